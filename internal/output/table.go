package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/viralstrategist/viralstrategist/internal/extract"
	"github.com/viralstrategist/viralstrategist/internal/strategist"
)

// TableFormatter renders outcomes as ASCII tables.
type TableFormatter struct{}

// FormatOutcome renders an outcome as a table.
func (f *TableFormatter) FormatOutcome(out *strategist.Outcome) (string, error) {
	if out == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(summary(out))
	sb.WriteString("\n")

	if !hasStructured(out) {
		sb.WriteString("\n")
		sb.WriteString(fallbackText(out))
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
			sb.WriteString("\n")
			sb.WriteString(recordTable(fmt.Sprintf("Idea %d", n), out, idea))
			sb.WriteString("\n")
		}
	case strategist.ModeHashtags:
		sb.WriteString("\n")
		sb.WriteString(hashtagTable(out.Hashtags))
		sb.WriteString("\n")
	default:
		sb.WriteString("\n")
		sb.WriteString(recordTable("", out, out.Record))
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func recordTable(title string, out *strategist.Outcome, record extract.Record) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(table.Row{"Field", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, name := range recordFields(out, record) {
		value := record.Get(name)
		if value == "" {
			value = "-"
		}
		t.AppendRow(table.Row{fieldLabel(name), value})
	}
	return t.Render()
}

// hashtagTable lists the tags and prints the copy line below the table.
// go-pretty upper-cases footers, so the tags must not go into one.
func hashtagTable(tags *extract.Hashtags) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Hashtag"})
	if tags == nil || len(tags.Tags) == 0 {
		return t.Render()
	}
	for i, tag := range tags.Tags {
		t.AppendRow(table.Row{i + 1, tag})
	}
	return t.Render() + "\n" + strings.Join(tags.Tags, " ")
}
