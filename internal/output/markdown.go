package output

import (
	"fmt"
	"strings"

	"github.com/viralstrategist/viralstrategist/internal/extract"
	"github.com/viralstrategist/viralstrategist/internal/strategist"
)

// MarkdownFormatter renders outcomes as markdown.
type MarkdownFormatter struct{}

// FormatOutcome renders an outcome as Markdown.
func (f *MarkdownFormatter) FormatOutcome(out *strategist.Outcome) (string, error) {
	if out == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(summary(out))))

	if !hasStructured(out) {
		sb.WriteString("> ")
		sb.WriteString(strings.ReplaceAll(fallbackText(out), "\n", "\n> "))
		sb.WriteString("\n")
		return sb.String(), nil
	}

	switch out.Mode {
	case strategist.ModeIdeas:
		n := 0
		for _, idea := range out.Ideas {
			if idea.Empty() {
				continue
			}
			n++
			sb.WriteString(fmt.Sprintf("### Idea %d\n\n", n))
			writeRecordTable(&sb, out, idea)
			sb.WriteString("\n")
		}
	case strategist.ModeHashtags:
		if out.Hashtags != nil {
			sb.WriteString("`")
			sb.WriteString(strings.Join(out.Hashtags.Tags, " "))
			sb.WriteString("`\n")
		}
	default:
		writeRecordTable(&sb, out, out.Record)
	}

	return sb.String(), nil
}

func writeRecordTable(sb *strings.Builder, out *strategist.Outcome, record extract.Record) {
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	for _, name := range recordFields(out, record) {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n",
			escapeMarkdownCell(fieldLabel(name)),
			escapeMarkdownCell(record.Get(name)),
		))
	}
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	return strings.ReplaceAll(value, "\n", " ")
}
