package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/viralstrategist/viralstrategist/internal/ailink"
	"github.com/viralstrategist/viralstrategist/internal/ailink/prompt"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List the loaded prompts",
	Long: `List the prompts the strategist would use, from ailink.prompts_dir when
set and from the embedded set otherwise.`,
	Args: cobra.NoArgs,
	RunE: runPrompts,
}

func init() {
	rootCmd.AddCommand(promptsCmd)
	promptsCmd.Flags().Bool("json", false, "Output prompt metadata as JSON")
}

func runPrompts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	svc, err := ailink.NewService(cfg.AILink)
	if err != nil {
		return err
	}

	prompts := svc.Registry.List()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		configs := make([]prompt.Config, 0, len(prompts))
		for _, p := range prompts {
			configs = append(configs, p.Config)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(configs)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), promptTable(prompts))
	return nil
}

func promptTable(prompts []*prompt.Prompt) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Slug", "Mode", "Version", "Inputs", "Video"})
	for _, p := range prompts {
		cfg := p.Config
		video := "-"
		if cfg.Input.AcceptsVideo {
			video = "yes"
		}
		t.AppendRow(table.Row{cfg.Slug, cfg.Mode, cfg.Version, strings.Join(cfg.Input.RequiredVariables, ", "), video})
	}
	return t.Render()
}
