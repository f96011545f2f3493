package feature

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Render formats the table as aligned pipe-delimited rows. Column widths use
// display width rather than rune count so wide characters stay lined up.
func (t *DataTable) Render() string {
	if t == nil || len(t.Rows) == 0 {
		return ""
	}
	widths := make([]int, len(t.Rows[0]))
	for _, row := range t.Rows {
		for j, cell := range row {
			if j >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[j] {
				widths[j] = w
			}
		}
	}

	var b strings.Builder
	for _, row := range t.Rows {
		b.WriteString("|")
		for j, cell := range row {
			b.WriteString(" ")
			b.WriteString(runewidth.FillRight(cell, widths[j]))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Records returns the table as a list of column-name to value maps, treating
// the first row as a header. A table with fewer than two rows yields nil.
func (t *DataTable) Records() []map[string]string {
	if t == nil || len(t.Rows) < 2 {
		return nil
	}
	header := t.Rows[0]
	records := make([]map[string]string, 0, len(t.Rows)-1)
	for _, row := range t.Rows[1:] {
		rec := make(map[string]string, len(header))
		for j, name := range header {
			if j < len(row) {
				rec[name] = row[j]
			}
		}
		records = append(records, rec)
	}
	return records
}
