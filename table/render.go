package table

import (
	"strings"
)

// Render emits the monospace grid described in spec.md §4.5: each
// column's width is max(3, len(name), widest live value in that
// column); header, a dash separator, then one line per live row in
// row_id order.
func (t *Table) Render() string {
	cols := t.Schema.Columns
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = max3(len(c.Name))
	}

	ids := t.LiveIDs()
	for _, id := range ids {
		row, _ := t.Get(id)
		for i, v := range row {
			if w := len(v.String()); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, c := range cells {
			b.WriteString("| ")
			b.WriteString(c)
			b.WriteString(strings.Repeat(" ", widths[i]-len(c)))
			b.WriteString(" ")
		}
		b.WriteString("|\n")
	}

	header := make([]string, len(cols))
	sep := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
		sep[i] = strings.Repeat("-", widths[i])
	}
	writeRow(header)
	writeRow(sep)

	for _, id := range ids {
		row, _ := t.Get(id)
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		writeRow(cells)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func max3(n int) int {
	if n < 3 {
		return 3
	}
	return n
}
