// Package xlsx keeps the workbook in a local .xlsx file. The file is saved after every write.
package xlsx

import (
	"context"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/tuition/storage/spreadsheet"
)

type Backend struct {
	mu   sync.Mutex
	path string
	file *excelize.File
}

var _ spreadsheet.Backend = (*Backend)(nil)

// Open opens the workbook at path, creating an empty one when the file does not exist.
func Open(path string) (*Backend, error) {
	var (
		f   *excelize.File
		err error
	)
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		f = excelize.NewFile()
		if err = f.SaveAs(path); err != nil {
			return nil, errors.Wrapf(err, "creating workbook %s", path)
		}
	} else if f, err = excelize.OpenFile(path); err != nil {
		return nil, errors.Wrapf(err, "opening workbook %s", path)
	}
	return &Backend{path: path, file: f}, nil
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}

func (b *Backend) exists(sheet string) bool {
	idx, err := b.file.GetSheetIndex(sheet)
	return err == nil && idx >= 0
}

func (b *Backend) rows(sheet string) ([][]string, error) {
	if !b.exists(sheet) {
		return nil, spreadsheet.ErrSheetNotFound
	}
	rows, err := b.file.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", sheet)
	}
	// drop trailing empty rows left behind by cleared cells
	for len(rows) > 0 && isEmpty(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func isEmpty(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

func (b *Backend) setRow(sheet string, rowNum int, row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	return b.file.SetSheetRow(sheet, cell, &values)
}

func (b *Backend) save() error {
	return errors.Wrapf(b.file.SaveAs(b.path), "saving workbook %s", b.path)
}

func (b *Backend) Values(_ context.Context, sheet string) ([][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rows(sheet)
}

func (b *Backend) Append(_ context.Context, sheet string, row []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	rows, err := b.rows(sheet)
	if err != nil {
		return err
	}
	if err = b.setRow(sheet, len(rows)+1, row); err != nil {
		return errors.Wrapf(err, "appending to %s", sheet)
	}
	return b.save()
}

func (b *Backend) UpdateRow(_ context.Context, sheet string, rowNum int, row []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	rows, err := b.rows(sheet)
	if err != nil {
		return err
	}
	// blank the cells the new row no longer covers
	if rowNum <= len(rows) {
		row = spreadsheet.Pad(row, len(rows[rowNum-1]))
	}
	if err = b.setRow(sheet, rowNum, row); err != nil {
		return errors.Wrapf(err, "updating %s row %d", sheet, rowNum)
	}
	return b.save()
}

func (b *Backend) DeleteRow(_ context.Context, sheet string, rowNum int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.exists(sheet) {
		return spreadsheet.ErrSheetNotFound
	}
	if err := b.file.RemoveRow(sheet, rowNum); err != nil {
		return errors.Wrapf(err, "deleting %s row %d", sheet, rowNum)
	}
	return b.save()
}

func (b *Backend) Clear(_ context.Context, sheet string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	rows, err := b.rows(sheet)
	if err != nil {
		return err
	}
	for i := len(rows); i >= 1; i-- {
		if err := b.file.RemoveRow(sheet, i); err != nil {
			return errors.Wrapf(err, "clearing %s", sheet)
		}
	}
	return b.save()
}

func (b *Backend) Write(_ context.Context, sheet string, grid [][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.exists(sheet) {
		return spreadsheet.ErrSheetNotFound
	}
	for i, row := range grid {
		if err := b.setRow(sheet, i+1, row); err != nil {
			return errors.Wrapf(err, "writing %s", sheet)
		}
	}
	return b.save()
}

func (b *Backend) EnsureSheet(_ context.Context, sheet string, header []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.exists(sheet) {
		if _, err := b.file.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "creating sheet %s", sheet)
		}
	}
	rows, err := b.rows(sheet)
	if err != nil {
		return err
	}
	if len(rows) == 0 && len(header) > 0 {
		if err = b.setRow(sheet, 1, header); err != nil {
			return errors.Wrapf(err, "writing %s header", sheet)
		}
	}
	return b.save()
}
