package cmd

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viralstrategist/viralstrategist/internal/ailink"
	"github.com/viralstrategist/viralstrategist/internal/appid"
	"github.com/viralstrategist/viralstrategist/internal/config"
	"github.com/viralstrategist/viralstrategist/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display environment, configuration, and version information. Credential values are never shown.",
	Run: func(cmd *cobra.Command, args []string) {
		logger := observability.Logger()
		version := crucible.GetVersion()
		identity := appid.Get()

		logger.Info("=== " + identity.BinaryName + " Environment Information ===")
		logger.Info("")

		logger.Info("Application:")
		logger.Info("  Name:       " + identity.BinaryName)
		logger.Info("  Version:    " + versionInfo.Version)
		logger.Info("  Commit:     " + versionInfo.Commit)
		logger.Info("  Built:      " + versionInfo.BuildDate)
		logger.Info("  Env Prefix: " + identity.EnvPrefix)
		logger.Info("")

		logger.Info("SSOT:")
		logger.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		logger.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		logger.Info("")

		logger.Info("Runtime:")
		logger.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		logger.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		logger.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		logger.Info("")

		cfg, err := loadConfig(cmd)
		if err != nil {
			logger.Warn("Config load failed", zap.Error(err))
			return
		}

		configFile := cfg.File
		if configFile == "" {
			configFile = "(none, expected " + config.DefaultConfigPath() + ")"
		}
		logger.Info("Configuration:")
		logger.Info("  Config File:      " + configFile)
		logger.Info(fmt.Sprintf("  Server:           %s:%d", cfg.Server.Host, cfg.Server.Port))
		logger.Info(fmt.Sprintf("  Max Upload:       %d bytes", cfg.Server.MaxUploadBytes))
		logger.Info("  Log Level:        " + cfg.Logging.Level)
		logger.Info("  Log Profile:      " + cfg.Logging.Profile)
		logger.Info(fmt.Sprintf("  Metrics:          %t (port %d)", cfg.Metrics.Enabled, cfg.Metrics.Port))
		logger.Info("")

		logger.Info("AILink:")
		logger.Info("  Default Provider: " + cfg.AILink.DefaultProvider)
		logger.Info("  Default Timeout:  " + cfg.AILink.DefaultTimeout.String())
		logger.Info(fmt.Sprintf("  Retry:            %d retries, base %s, x%.1f, max %s",
			cfg.AILink.Retry.MaxRetries, cfg.AILink.Retry.BaseDelay, cfg.AILink.Retry.Multiplier, cfg.AILink.Retry.MaxDelay))
		if cfg.AILink.PromptsDir != "" {
			logger.Info("  Prompts Dir:      " + cfg.AILink.PromptsDir)
		}

		ids := make([]string, 0, len(cfg.AILink.Providers))
		for id := range cfg.AILink.Providers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			p := cfg.AILink.Providers[id]
			logger.Info(fmt.Sprintf("  %s: enabled=%t ai_provider=%s model=%s credentials=%d",
				id, p.Enabled, p.AIProvider, p.Models["default"], len(p.Credentials)))
		}
		logger.Info("")

		svc, err := ailink.NewService(cfg.AILink)
		if err != nil {
			logger.Warn("Prompt load failed", zap.Error(err))
			return
		}
		statuses, _ := svc.Check()
		logger.Info("Routing:")
		for _, s := range statuses {
			if s.Error != "" {
				logger.Info(fmt.Sprintf("  %s: %s", s.PromptSlug, s.Error))
				continue
			}
			logger.Info(fmt.Sprintf("  %s -> %s/%s (credential %s from %s)", s.PromptSlug, s.ProviderID, s.Model, s.Credential, s.Source))
		}
		logger.Info("")

		logger.Info("=== End Environment Information ===")
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
