// Package workbook reads Excel workbooks into typed cell grids that the
// ingest pipeline can scan without touching the underlying file format.
package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Workbook is a read-only view over an open spreadsheet.
type Workbook interface {
	// SheetNames returns worksheet names in workbook order.
	SheetNames() []string
	// Grid reads the named worksheet into a typed grid.
	Grid(sheet string) (Grid, error)
}

// File is an excelize-backed Workbook.
type File struct {
	f    *excelize.File
	path string
}

// Open opens an xlsx file for reading.
func Open(path string) (*File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &File{f: f, path: path}, nil
}

// FromExcelize wraps an already-open excelize file. Used by tests that build
// workbooks in memory.
func FromExcelize(f *excelize.File) *File {
	return &File{f: f}
}

// Close releases the underlying file.
func (w *File) Close() error {
	return w.f.Close()
}

// Path returns the path the workbook was opened from, if any.
func (w *File) Path() string { return w.path }

// SheetNames returns worksheet names in workbook order.
func (w *File) SheetNames() []string {
	return w.f.GetSheetList()
}

// Grid reads a worksheet into typed cells. Formatted values are used so the
// grid sees what a user would see in Excel; typing is re-inferred from the
// text.
func (w *File) Grid(sheet string) (Grid, error) {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	grid := make(Grid, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, raw := range row {
			cells[j] = ParseCell(raw)
		}
		grid[i] = cells
	}
	return grid, nil
}
