package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// table renders static rows in aligned columns.
type table struct {
	headers []string
	rows    [][]string
	// cellStyle picks the style of a body cell; nil means the body style.
	cellStyle func(row, col int) lipgloss.Style
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(s styles) string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	total := len(widths) - 1
	for i := range widths {
		// Padding is part of the width.
		widths[i] += 2
		total += widths[i]
	}

	var sb strings.Builder
	sep := s.muted.Render("|")

	for i, h := range t.headers {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(s.header.Width(widths[i]).Render(h))
	}
	sb.WriteString("\n")
	sb.WriteString(s.muted.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for r, row := range t.rows {
		for i := range widths {
			if i > 0 {
				sb.WriteString(sep)
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			style := s.body
			if t.cellStyle != nil {
				style = t.cellStyle(r, i)
			}
			sb.WriteString(style.Width(widths[i]).Render(cell))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
