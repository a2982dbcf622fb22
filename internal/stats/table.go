package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const gridGap = 2

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = displayWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

// formatGrid lays items out row by row in at most cols columns, narrowing the
// column count until the grid fits width (when width > 0).
func formatGrid(items []string, cols, width int) []string {
	if len(items) == 0 {
		return nil
	}
	cellWidth := 0
	for _, item := range items {
		if w := displayWidth(item); w > cellWidth {
			cellWidth = w
		}
	}
	if cols < 1 {
		cols = 1
	}
	if width > 0 {
		fit := (width + gridGap) / (cellWidth + gridGap)
		if fit < 1 {
			fit = 1
		}
		if fit < cols {
			cols = fit
		}
	}
	lines := make([]string, 0, (len(items)+cols-1)/cols)
	for start := 0; start < len(items); start += cols {
		end := start + cols
		if end > len(items) {
			end = len(items)
		}
		var b strings.Builder
		for i, item := range items[start:end] {
			if i > 0 {
				b.WriteString(strings.Repeat(" ", gridGap))
			}
			if start+i == end-1 {
				b.WriteString(item)
				continue
			}
			b.WriteString(padCell(item, cellWidth, false))
		}
		lines = append(lines, b.String())
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return b.String()
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := displayWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
