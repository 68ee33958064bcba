// Package spreadsheet stores typed records in the named sheets of a workbook.
// Row 1 of every sheet is a header; each following row is one record, with its columns in a fixed order.
package spreadsheet

import (
	"context"
	"errors"
)

var (
	// ErrSheetNotFound is returned by backends when the named sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrRowNotFound is returned when a key does not resolve to a row.
	ErrRowNotFound = errors.New("row not found")
)

// Backend is a workbook. Row numbers are 1-based sheet coordinates, the header being row 1.
type Backend interface {
	// Values returns every row of sheet, header included.
	Values(ctx context.Context, sheet string) ([][]string, error)
	// Append adds row after the last non-empty row.
	Append(ctx context.Context, sheet string, row []string) error
	// UpdateRow overwrites row rowNum from column A.
	UpdateRow(ctx context.Context, sheet string, rowNum int, row []string) error
	// DeleteRow removes row rowNum, shifting the following rows up.
	DeleteRow(ctx context.Context, sheet string, rowNum int) error
	// Clear empties sheet and keeps it.
	Clear(ctx context.Context, sheet string) error
	// Write writes grid from cell A1.
	Write(ctx context.Context, sheet string, grid [][]string) error
	// EnsureSheet creates sheet if missing and writes header into it if empty.
	EnsureSheet(ctx context.Context, sheet string, header []string) error
}

// FreshReader is implemented by backends that serve Values from a cache.
// FreshValues reads the sheet from its source of truth, skipping the cache.
type FreshReader interface {
	FreshValues(ctx context.Context, sheet string) ([][]string, error)
}

// Cell returns column i of row, or "" when the row is too short.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// Pad extends row with empty cells up to n columns.
func Pad(row []string, n int) []string {
	out := make([]string, len(row), max(n, len(row)))
	copy(out, row)
	for len(out) < n {
		out = append(out, "")
	}
	return out
}

// CopyGrid returns a deep copy of grid.
func CopyGrid(grid [][]string) [][]string {
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out
}
