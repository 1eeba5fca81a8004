package output

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders results as a markdown table.
type MarkdownFormatter struct{}

// FormatCalls renders call reports as Markdown.
func (f *MarkdownFormatter) FormatCalls(reports []CallReport) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Gateway calls\n\n")
	sb.WriteString("| Operation | Status | Elapsed | Response |\n")
	sb.WriteString("|-----------|--------|---------|----------|\n")

	succeeded := 0
	for _, r := range reports {
		status := "failed"
		if r.OK {
			status = "ok"
			succeeded++
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %dms | %s |\n",
			escapeMarkdownCell(r.Operation),
			status,
			r.ElapsedMs,
			escapeMarkdownCell(truncate(r.Response, 60)),
		))
	}

	if len(reports) > 0 {
		sb.WriteString(fmt.Sprintf("\n**Result**: %d/%d ok\n", succeeded, len(reports)))
	}

	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	value = strings.ReplaceAll(value, "\n", " ")
	return value
}
