package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viralstrategist/viralstrategist/internal/ailink/driver"
	"github.com/viralstrategist/viralstrategist/internal/appid"
	"github.com/viralstrategist/viralstrategist/internal/config"
	"github.com/viralstrategist/viralstrategist/internal/observability"
)

var (
	cfgFile   string
	verbose   bool
	traceFile string

	traceCleanup func()

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          appid.Get().BinaryName,
	Short:        appid.Get().Description,
	SilenceUsage: true,
	Long: fmt.Sprintf(`%s - %s

Score a TikTok clip, brainstorm scored video ideas, or build a hashtag set.
Run "serve" to expose the same actions over HTTP.`, appid.Get().BinaryName, appid.Get().Description),
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if traceCleanup != nil {
			traceCleanup()
			traceCleanup = nil
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Config loading must not emit metrics to stdout; serve re-enables telemetry.
	observability.DisableGlobalTelemetry()

	cobra.OnInitialize(initConfig)

	identity := appid.Get()
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file (default is $XDG_CONFIG_HOME/%s/config.yaml)", identity.ConfigName))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	rootCmd.PersistentFlags().StringVar(&traceFile, "trace", "", "trace provider requests/responses to NDJSON file")
}

// initConfig pins the config file and brings up the CLI logger and tracing.
func initConfig() {
	config.SetConfigFile(cfgFile)

	observability.InitCLILogger(appid.Get().BinaryName, "", verbose)

	if traceFile != "" {
		cleanup, err := driver.EnableTracing(traceFile)
		if err != nil {
			observability.CLILogger.Warn("Failed to enable tracing", zap.Error(err))
		} else {
			observability.CLILogger.Debug("Provider tracing enabled", zap.String("file", traceFile))
			traceCleanup = cleanup
		}
	}
}

// loadConfig loads layered config and applies its log level unless --verbose
// already forced debug.
func loadConfig(cmd *cobra.Command, overrides ...map[string]any) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context(), overrides...)
	if err != nil {
		return nil, err
	}
	if !verbose && cfg.Logging.Level != "" {
		observability.InitCLILogger(appid.Get().BinaryName, cfg.Logging.Level, false)
	}
	if cfg.File != "" {
		observability.Logger().Debug("Using config file", zap.String("path", cfg.File))
	}
	return cfg, nil
}
