package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/viralstrategist/viralstrategist/internal/ailink"
	"github.com/viralstrategist/viralstrategist/internal/config"
	"github.com/viralstrategist/viralstrategist/internal/observability"
	"github.com/viralstrategist/viralstrategist/internal/output"
	"github.com/viralstrategist/viralstrategist/internal/strategist"
)

// ErrActionFailed is returned after a failed outcome has been printed.
var ErrActionFailed = errors.New("action did not produce results")

var videoTypesByExt = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".3gp":  "video/3gpp",
}

func init() {
	rootCmd.AddCommand(
		newActionCmd(strategist.ModeAnalysis, "analyze",
			"Score a clip for viral potential",
			`Send an optional video plus niche, goal, mood and region to the model and
print the viral code, score, hook, overlay, caption, hashtags and post time.`),
		newActionCmd(strategist.ModeIdeas, "ideas",
			"Brainstorm three scored video ideas",
			`Generate three video ideas for --topic. Each idea carries its own viral
code, score, overlay text, caption, hashtags and post time.`),
		newActionCmd(strategist.ModeHashtags, "hashtags",
			"Build a hashtag set",
			`Generate a hashtag set from --topic and --visuals. When the reply holds no
#tags the raw text is printed instead.`),
	)
}

func newActionCmd(mode strategist.Mode, use, short, long string) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, mode)
		},
	}

	opts := strategist.DefaultOptions
	c.Flags().String("niche", "", fmt.Sprintf("content niche (%s)", strings.Join(opts.Niches, ", ")))
	c.Flags().String("goal", "", fmt.Sprintf("growth goal (%s)", strings.Join(opts.Goals, ", ")))
	c.Flags().String("mood", "", fmt.Sprintf("tone (%s)", strings.Join(opts.Moods, ", ")))
	c.Flags().String("region", "", fmt.Sprintf("target region (%s)", strings.Join(opts.Regions, ", ")))
	c.Flags().String("format", "table", "output format: table, json, markdown")
	c.Flags().String("model", "", "model override")

	switch mode {
	case strategist.ModeAnalysis:
		c.Flags().String("video", "", "path to the clip to analyze")
		c.Flags().String("video-type", "", "video media type (default from file extension)")
	case strategist.ModeIdeas:
		c.Flags().String("topic", "", "video topic (required)")
		_ = c.MarkFlagRequired("topic")
	case strategist.ModeHashtags:
		c.Flags().String("topic", "", "video topic (required)")
		c.Flags().String("visuals", "", "what is visible in the clip (required)")
		_ = c.MarkFlagRequired("topic")
		_ = c.MarkFlagRequired("visuals")
	}
	return c
}

func runAction(cmd *cobra.Command, mode strategist.Mode) error {
	formatName, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params, err := paramsFromFlags(cmd, cfg)
	if err != nil {
		return err
	}
	if err := strategist.Validate(mode, params.WithDefaults()); err != nil {
		return err
	}

	svc, err := ailink.NewService(cfg.AILink)
	if err != nil {
		return err
	}
	strat := strategist.New(svc, observability.Logger())
	strat.Model, _ = cmd.Flags().GetString("model")

	out, err := strat.Run(cmd.Context(), mode, params)
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatOutcome(out)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)

	if out.Failed() {
		return fmt.Errorf("%w: %s", ErrActionFailed, out.Status)
	}
	return nil
}

// paramsFromFlags collects the shared and mode-specific flags. Flags a mode
// does not declare are left blank.
func paramsFromFlags(cmd *cobra.Command, cfg *config.Config) (strategist.Params, error) {
	flag := func(name string) string {
		value, _ := cmd.Flags().GetString(name)
		return strings.TrimSpace(value)
	}

	params := strategist.Params{
		Niche:     flag("niche"),
		Goal:      flag("goal"),
		Mood:      flag("mood"),
		Region:    flag("region"),
		Topic:     flag("topic"),
		Visuals:   flag("visuals"),
		VideoType: flag("video-type"),
	}

	if path := flag("video"); path != "" {
		var limit int64
		if cfg != nil {
			limit = cfg.Server.MaxUploadBytes
		}
		data, err := readVideo(path, limit)
		if err != nil {
			return strategist.Params{}, err
		}
		params.Video = data
		if params.VideoType == "" {
			params.VideoType = videoTypeFor(path)
		}
	}
	return params, nil
}

// readVideo reads at most limit bytes from path; limit <= 0 means no cap.
func readVideo(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer f.Close() // nolint:errcheck // read-only

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read video: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("video %s exceeds the %d byte upload limit", filepath.Base(path), limit)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("video %s is empty", filepath.Base(path))
	}
	return data, nil
}

// videoTypeFor maps a file extension to a media type. Unknown extensions
// return "" so the strategist falls back to video/mp4.
func videoTypeFor(path string) string {
	return videoTypesByExt[strings.ToLower(filepath.Ext(path))]
}
