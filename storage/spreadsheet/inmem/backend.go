// Package inmem is a workbook kept in memory, for tests & local development.
package inmem

import (
	"context"
	"fmt"
	"sync"

	"github.com/trezcool/tuition/storage/spreadsheet"
)

type Backend struct {
	mu     sync.RWMutex
	sheets map[string][][]string
}

var _ spreadsheet.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{sheets: make(map[string][][]string)}
}

// Load replaces the content of sheet, creating it if needed.
func (b *Backend) Load(sheet string, grid [][]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sheets[sheet] = spreadsheet.CopyGrid(grid)
}

// Drop removes sheet.
func (b *Backend) Drop(sheet string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sheets, sheet)
}

func (b *Backend) Values(_ context.Context, sheet string) ([][]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	grid, ok := b.sheets[sheet]
	if !ok {
		return nil, spreadsheet.ErrSheetNotFound
	}
	return spreadsheet.CopyGrid(grid), nil
}

func (b *Backend) Append(_ context.Context, sheet string, row []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	grid, ok := b.sheets[sheet]
	if !ok {
		return spreadsheet.ErrSheetNotFound
	}
	b.sheets[sheet] = append(grid, append([]string(nil), row...))
	return nil
}

func (b *Backend) UpdateRow(_ context.Context, sheet string, rowNum int, row []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	grid, ok := b.sheets[sheet]
	if !ok {
		return spreadsheet.ErrSheetNotFound
	}
	if rowNum < 1 {
		return fmt.Errorf("invalid row %d", rowNum)
	}
	for len(grid) < rowNum {
		grid = append(grid, []string{})
	}
	grid[rowNum-1] = append([]string(nil), row...)
	b.sheets[sheet] = grid
	return nil
}

func (b *Backend) DeleteRow(_ context.Context, sheet string, rowNum int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	grid, ok := b.sheets[sheet]
	if !ok {
		return spreadsheet.ErrSheetNotFound
	}
	if rowNum < 1 || rowNum > len(grid) {
		return fmt.Errorf("row %d out of range", rowNum)
	}
	b.sheets[sheet] = append(grid[:rowNum-1:rowNum-1], grid[rowNum:]...)
	return nil
}

func (b *Backend) Clear(_ context.Context, sheet string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sheets[sheet]; !ok {
		return spreadsheet.ErrSheetNotFound
	}
	b.sheets[sheet] = [][]string{}
	return nil
}

func (b *Backend) Write(_ context.Context, sheet string, grid [][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	current, ok := b.sheets[sheet]
	if !ok {
		return spreadsheet.ErrSheetNotFound
	}
	out := spreadsheet.CopyGrid(grid)
	if len(current) > len(out) {
		out = append(out, spreadsheet.CopyGrid(current[len(out):])...)
	}
	b.sheets[sheet] = out
	return nil
}

func (b *Backend) EnsureSheet(_ context.Context, sheet string, header []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sheets[sheet]) == 0 && len(header) > 0 {
		b.sheets[sheet] = [][]string{append([]string(nil), header...)}
	} else if _, ok := b.sheets[sheet]; !ok {
		b.sheets[sheet] = [][]string{}
	}
	return nil
}
