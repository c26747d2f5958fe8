package output

import (
	"fmt"
	"slices"
	"strings"

	"github.com/viralstrategist/viralstrategist/internal/strategist"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders strategist outcomes.
type Formatter interface {
	FormatOutcome(out *strategist.Outcome) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// fieldLabel turns a record key such as "post_time" into "Post Time".
func fieldLabel(name string) string {
	parts := strings.Split(name, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

// recordFields returns the keys to show, in prompt order when known.
func recordFields(out *strategist.Outcome, record map[string]string) []string {
	if len(out.Fields) > 0 {
		return out.Fields
	}
	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// summary is the one-line header shared by the text formats.
func summary(out *strategist.Outcome) string {
	line := fmt.Sprintf("%s: %s", out.Mode, out.Status)
	if out.Provider != "" {
		line += fmt.Sprintf(" (%s", out.Provider)
		if out.Model != "" {
			line += "/" + out.Model
		}
		if out.Attempts > 1 {
			line += fmt.Sprintf(", %d attempts", out.Attempts)
		}
		line += ")"
	}
	return line
}

// fallbackText is what a text format shows when nothing structured exists.
func fallbackText(out *strategist.Outcome) string {
	if out.Failed() {
		return out.Message
	}
	return strings.TrimSpace(out.Raw)
}

func hasStructured(out *strategist.Outcome) bool {
	return !out.Failed() && out.Status != strategist.StatusFallback
}
