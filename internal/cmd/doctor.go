package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viralstrategist/viralstrategist/internal/ailink"
	"github.com/viralstrategist/viralstrategist/internal/appid"
	"github.com/viralstrategist/viralstrategist/internal/config"
	"github.com/viralstrategist/viralstrategist/internal/observability"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Check config loading, prompt loading and provider routing for every prompt.
No provider request is made; key values are never printed.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	logger := observability.Logger()
	logger.Info("=== " + appid.Get().BinaryName + " doctor ===")

	const totalChecks = 4
	logger.Info(fmt.Sprintf("[1/%d] Go version... ✅ %s", totalChecks, runtime.Version()),
		zap.String("go_version", runtime.Version()))

	version := crucible.GetVersion()
	if version.Gofulmen == "" {
		logger.Warn(fmt.Sprintf("[2/%d] Gofulmen/Crucible... ⚠️  version metadata unavailable", totalChecks))
	} else {
		logger.Info(fmt.Sprintf("[2/%d] Gofulmen/Crucible... ✅ %s / %s", totalChecks, version.Gofulmen, version.Crucible))
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		logger.Error(fmt.Sprintf("[3/%d] Config... ❌ %v", totalChecks, err))
		return fmt.Errorf("config: %w", err)
	}
	source := cfg.File
	if source == "" {
		source = "defaults + environment (" + config.DefaultConfigPath() + " not found)"
	}
	logger.Info(fmt.Sprintf("[3/%d] Config... ✅ %s", totalChecks, source))

	svc, err := ailink.NewService(cfg.AILink)
	if err != nil {
		logger.Error(fmt.Sprintf("[4/%d] Providers... ❌ %v", totalChecks, err))
		return err
	}
	statuses, checkErr := svc.Check()
	if checkErr != nil {
		logger.Warn(fmt.Sprintf("[4/%d] Providers... ⚠️  %d prompt(s) cannot be dispatched", totalChecks, countFailed(statuses)))
	} else {
		logger.Info(fmt.Sprintf("[4/%d] Providers... ✅ %d prompt(s) routable", totalChecks, len(statuses)))
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), providerTable(statuses))

	if checkErr != nil {
		return checkErr
	}
	return nil
}

func providerTable(statuses []ailink.ProviderStatus) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Prompt", "Provider", "Model", "Credential", "Source", "Status"})
	for _, s := range statuses {
		status := "ok"
		if s.Error != "" {
			status = s.Error
		}
		t.AppendRow(table.Row{s.PromptSlug, s.ProviderID, s.Model, s.Credential, s.Source, status})
	}
	return t.Render()
}

func countFailed(statuses []ailink.ProviderStatus) int {
	n := 0
	for _, s := range statuses {
		if s.Error != "" {
			n++
		}
	}
	return n
}
