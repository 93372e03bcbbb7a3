// Package columns reads ASCII tables drawn with "+---+" borders and "|"
// separated cells, measures their columns, and redraws them.
package columns

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table is a parsed pipe-delimited table.
type Table struct {
	// Header is the first row when a border line follows it.
	Header []string

	// Rows are the remaining rows, cells trimmed.
	Rows [][]string
}

// Parse reads a table. Lines starting with "+" and blank lines are borders;
// every other line is split on "|" with the outermost pieces dropped. Lines
// without "|" are ignored.
func Parse(r io.Reader) (*Table, error) {
	var (
		rows        [][]string
		borderAfter = map[int]bool{}
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "+") {
			if len(rows) > 0 {
				borderAfter[len(rows)-1] = true
			}
			continue
		}
		if row := splitRow(line); row != nil {
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}

	t := &Table{}
	if len(rows) > 1 && borderAfter[0] {
		t.Header, rows = rows[0], rows[1:]
	}
	t.Rows = rows
	return t, nil
}

// splitRow returns nil for a line without any "|", which holds no cells.
func splitRow(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return nil
	}
	parts = parts[1 : len(parts)-1]
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// Widths returns the longest cell length per column, header included.
// Lengths count characters, not bytes.
func (t *Table) Widths() []int {
	var widths []int
	measure := func(row []string) {
		for i, cell := range row {
			n := utf8.RuneCountInString(cell)
			if i >= len(widths) {
				widths = append(widths, n)
			} else if n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		measure(row)
	}
	return widths
}

// Render redraws the table with every column padded to its widest cell.
func (t *Table) Render() string {
	tw := table.NewWriter()
	style := table.StyleDefault
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)

	if len(t.Header) > 0 {
		tw.AppendHeader(toRow(t.Header))
	}
	for _, row := range t.Rows {
		tw.AppendRow(toRow(row))
	}
	return tw.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
