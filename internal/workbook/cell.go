package workbook

import (
	"strconv"
	"strings"
	"time"
)

// CellType discriminates the inferred value kind of a cell.
type CellType int

const (
	CellEmpty CellType = iota
	CellString
	CellNumber
	CellBool
	CellDate
)

// Cell is one worksheet cell with its raw text and best-effort typed value.
// Spreadsheets in the wild carry formatted strings, so typing is recovered
// from the text rather than trusted from the file.
type Cell struct {
	Type   CellType
	Text   string
	Number float64
	Bool   bool
	Date   time.Time
}

// dateLayouts covers the formats Excel emits for date-formatted cells once
// excelize applies the number format.
var dateLayouts = []string{
	"01-02-06",
	"1/2/06",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"Jan 2, 2006",
	"2-Jan-06",
	"02-Jan-06",
}

// ParseCell infers a typed Cell from formatted cell text.
func ParseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Type: CellEmpty}
	}

	switch strings.ToUpper(trimmed) {
	case "TRUE":
		return Cell{Type: CellBool, Text: trimmed, Bool: true}
	case "FALSE":
		return Cell{Type: CellBool, Text: trimmed, Bool: false}
	}

	if n, ok := parseNumber(trimmed); ok {
		return Cell{Type: CellNumber, Text: trimmed, Number: n}
	}

	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, trimmed); err == nil {
			return Cell{Type: CellDate, Text: trimmed, Date: d}
		}
	}

	return Cell{Type: CellString, Text: trimmed}
}

// parseNumber strips currency and grouping characters before conversion.
// Parenthesized amounts are treated as negatives per accounting convention.
func parseNumber(s string) (float64, bool) {
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool { return c.Type == CellEmpty }

// String returns the trimmed textual form of the cell.
func (c Cell) String() string { return c.Text }

// Float returns the numeric value of the cell, converting string cells that
// happen to contain numbers. The second return reports convertibility.
func (c Cell) Float() (float64, bool) {
	switch c.Type {
	case CellNumber:
		return c.Number, true
	case CellBool:
		if c.Bool {
			return 1, true
		}
		return 0, true
	case CellString:
		return parseNumber(c.Text)
	}
	return 0, false
}

// Int returns the cell as an integer when it holds a whole number.
func (c Cell) Int() (int, bool) {
	f, ok := c.Float()
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Grid is a rectangular snapshot of a worksheet. Rows may be ragged; callers
// index defensively via At.
type Grid [][]Cell

// At returns the cell at (row, col), or an empty cell when out of range.
func (g Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g) {
		return Cell{Type: CellEmpty}
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return Cell{Type: CellEmpty}
	}
	return r[col]
}

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int { return len(g) }

// Cols returns the widest row length in the grid.
func (g Grid) Cols() int {
	max := 0
	for _, r := range g {
		if len(r) > max {
			max = len(r)
		}
	}
	return max
}
