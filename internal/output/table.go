package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatCalls renders call reports as a table with a success summary footer.
func (f *TableFormatter) FormatCalls(reports []CallReport) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Operation", "Status", "Elapsed", "Response"})

	succeeded := 0
	for _, r := range reports {
		status := "failed"
		if r.OK {
			status = "ok"
			succeeded++
		}
		t.AppendRow(table.Row{
			r.Operation,
			status,
			fmt.Sprintf("%dms", r.ElapsedMs),
			truncate(r.Response, 60),
		})
	}

	if len(reports) > 0 {
		t.AppendFooter(table.Row{
			"",
			fmt.Sprintf("%d/%d ok", succeeded, len(reports)),
			"",
			"",
		})
	}

	return t.Render(), nil
}

// RenderTable renders arbitrary rows with the standard style, for the
// introspection commands.
func RenderTable(header []string, rows [][]string) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		t.AppendRow(r)
	}

	return t.Render()
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
