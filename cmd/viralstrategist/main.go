package main

import (
	"errors"

	"github.com/fulmenhq/gofulmen/foundry"

	"github.com/viralstrategist/viralstrategist/internal/cmd"
	"github.com/viralstrategist/viralstrategist/internal/observability"
	"github.com/viralstrategist/viralstrategist/internal/server/handlers"
)

// Version information set via ldflags during build
// Example: go build -ldflags="-X main.version=1.0.0 -X main.commit=abc123 -X main.buildDate=2025-10-28"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	handlers.SetVersionInfo(version, commit, buildDate)

	err := cmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, cmd.ErrActionFailed):
		// The outcome has already been printed.
		cmd.ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Action failed", err)
	default:
		cmd.ExitWithCodeStderr(foundry.ExitFailure, "Command execution failed", err)
	}
}
