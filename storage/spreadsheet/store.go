package spreadsheet

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core"
)

// NotFound is the row number of a key that does not resolve.
const NotFound = -1

// headerRows is the number of rows before the first record.
const headerRows = 1

// Schema is the fixed column layout of a sheet.
type Schema struct {
	Sheet  string
	Header []string
}

// Store is the record store over a Backend.
//
// Every mutation of a sheet runs behind that sheet's lock, so within the process an index
// resolved inside Mutate cannot be shifted by a concurrent append or delete before it is used.
// Writers in other processes are not serialized.
type Store struct {
	backend Backend
	logger  core.Logger
	schemas map[string]Schema

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(backend Backend, logger core.Logger, schemas ...Schema) *Store {
	s := &Store{
		backend: backend,
		logger:  logger,
		schemas: make(map[string]Schema, len(schemas)),
		locks:   make(map[string]*sync.Mutex),
	}
	for _, sc := range schemas {
		s.schemas[sc.Sheet] = sc
	}
	return s
}

func (s *Store) lock(sheet string) func() {
	s.mu.Lock()
	l, ok := s.locks[sheet]
	if !ok {
		l = new(sync.Mutex)
		s.locks[sheet] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Init creates every registered sheet that is missing, with its header.
func (s *Store) Init(ctx context.Context) error {
	for _, sc := range s.schemas {
		unlock := s.lock(sc.Sheet)
		err := s.backend.EnsureSheet(ctx, sc.Sheet, sc.Header)
		unlock()
		if err != nil {
			return errors.Wrapf(err, "creating sheet %s", sc.Sheet)
		}
	}
	return nil
}

// Grid returns every row of sheet, header included. A missing sheet is empty.
func (s *Store) Grid(ctx context.Context, sheet string) ([][]string, error) {
	return s.grid(ctx, sheet, s.backend.Values)
}

// freshGrid is Grid bypassing any read cache. Row numbers handed to writers are resolved from it.
func (s *Store) freshGrid(ctx context.Context, sheet string) ([][]string, error) {
	if fr, ok := s.backend.(FreshReader); ok {
		return s.grid(ctx, sheet, fr.FreshValues)
	}
	return s.Grid(ctx, sheet)
}

func (s *Store) grid(ctx context.Context, sheet string, read func(context.Context, string) ([][]string, error)) ([][]string, error) {
	grid, err := read(ctx, sheet)
	if err != nil {
		if errors.Cause(err) == ErrSheetNotFound {
			return [][]string{}, nil
		}
		return nil, errors.Wrapf(err, "reading sheet %s", sheet)
	}
	return grid, nil
}

// Fetch returns the records of sheet, header excluded. A missing or empty sheet has no records.
func (s *Store) Fetch(ctx context.Context, sheet string) ([][]string, error) {
	grid, err := s.Grid(ctx, sheet)
	if err != nil {
		return nil, err
	}
	if len(grid) <= headerRows {
		return [][]string{}, nil
	}
	return grid[headerRows:], nil
}

// Append adds one record at the end of sheet. A missing registered sheet is created first.
func (s *Store) Append(ctx context.Context, sheet string, row []string) error {
	defer s.lock(sheet)()
	return s.append(ctx, sheet, row)
}

func (s *Store) append(ctx context.Context, sheet string, row []string) error {
	err := s.backend.Append(ctx, sheet, row)
	if errors.Cause(err) == ErrSheetNotFound {
		sc, ok := s.schemas[sheet]
		if !ok {
			return errors.Wrapf(err, "appending to %s", sheet)
		}
		s.logger.Warn(fmt.Sprintf("sheet %s missing, creating it", sheet))
		if err = s.backend.EnsureSheet(ctx, sheet, sc.Header); err != nil {
			return errors.Wrapf(err, "creating sheet %s", sheet)
		}
		err = s.backend.Append(ctx, sheet, row)
	}
	return errors.Wrapf(err, "appending to %s", sheet)
}

// FindRowIndex returns the sheet row number of the first record whose keyColumn equals key, or NotFound.
func (s *Store) FindRowIndex(ctx context.Context, sheet, keyColumn, key string) (int, error) {
	grid, err := s.freshGrid(ctx, sheet)
	if err != nil {
		return NotFound, err
	}
	return findRowIndex(grid, keyColumn, key), nil
}

func findRowIndex(grid [][]string, keyColumn, key string) int {
	if len(grid) == 0 {
		return NotFound
	}
	col := -1
	for i, h := range grid[0] {
		if h == keyColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return NotFound
	}
	for i, row := range grid[headerRows:] {
		if Cell(row, col) == key {
			return i + headerRows + 1
		}
	}
	return NotFound
}

// Update overwrites the record whose keyColumn equals key.
func (s *Store) Update(ctx context.Context, sheet, keyColumn, key string, row []string) error {
	return s.Mutate(ctx, sheet, func(tx *Tx) error {
		rowNum, err := tx.FindRowIndex(keyColumn, key)
		if err != nil {
			return err
		}
		return tx.UpdateAt(rowNum, row)
	})
}

// UpdateAt overwrites the record at a sheet row number resolved earlier.
func (s *Store) UpdateAt(ctx context.Context, sheet string, rowNum int, row []string) error {
	defer s.lock(sheet)()
	return s.updateAt(ctx, sheet, rowNum, row)
}

func (s *Store) updateAt(ctx context.Context, sheet string, rowNum int, row []string) error {
	if rowNum <= headerRows {
		return ErrRowNotFound
	}
	return errors.Wrapf(s.backend.UpdateRow(ctx, sheet, rowNum, row), "updating %s row %d", sheet, rowNum)
}

// Delete physically removes the record whose keyColumn equals key. Following rows shift up.
func (s *Store) Delete(ctx context.Context, sheet, keyColumn, key string) error {
	return s.Mutate(ctx, sheet, func(tx *Tx) error {
		rowNum, err := tx.FindRowIndex(keyColumn, key)
		if err != nil {
			return err
		}
		return tx.DeleteAt(rowNum)
	})
}

// BatchRewrite reads the whole sheet, header included, transforms it with fn, then clears the sheet & writes the result.
// Nothing is written when fn fails.
func (s *Store) BatchRewrite(ctx context.Context, sheet string, fn func(grid [][]string) ([][]string, error)) error {
	return s.Mutate(ctx, sheet, func(tx *Tx) error {
		grid, err := tx.Grid()
		if err != nil {
			return err
		}
		out, err := fn(CopyGrid(grid))
		if err != nil {
			return err
		}
		return tx.Rewrite(out)
	})
}

// Mutate runs fn as the only writer of sheet in this process.
func (s *Store) Mutate(ctx context.Context, sheet string, fn func(tx *Tx) error) error {
	defer s.lock(sheet)()
	return fn(&Tx{ctx: ctx, store: s, sheet: sheet})
}

// Tx is the view of one sheet inside Mutate. It must not be used once Mutate has returned.
type Tx struct {
	ctx   context.Context
	store *Store
	sheet string
	grid  [][]string
}

// Grid reads the sheet from its source of truth, header included. The result is kept until the next write.
func (tx *Tx) Grid() ([][]string, error) {
	if tx.grid != nil {
		return tx.grid, nil
	}
	grid, err := tx.store.freshGrid(tx.ctx, tx.sheet)
	if err != nil {
		return nil, err
	}
	tx.grid = grid
	return grid, nil
}

// Row returns the row at a sheet row number.
func (tx *Tx) Row(rowNum int) ([]string, error) {
	grid, err := tx.Grid()
	if err != nil {
		return nil, err
	}
	if rowNum <= headerRows || rowNum > len(grid) {
		return nil, ErrRowNotFound
	}
	return append([]string(nil), grid[rowNum-1]...), nil
}

// FindRowIndex resolves key to a sheet row number, failing with ErrRowNotFound.
func (tx *Tx) FindRowIndex(keyColumn, key string) (int, error) {
	grid, err := tx.Grid()
	if err != nil {
		return NotFound, err
	}
	rowNum := findRowIndex(grid, keyColumn, key)
	if rowNum == NotFound {
		return NotFound, ErrRowNotFound
	}
	return rowNum, nil
}

func (tx *Tx) UpdateAt(rowNum int, row []string) error {
	tx.grid = nil
	return tx.store.updateAt(tx.ctx, tx.sheet, rowNum, row)
}

func (tx *Tx) DeleteAt(rowNum int) error {
	tx.grid = nil
	if rowNum <= headerRows {
		return ErrRowNotFound
	}
	err := tx.store.backend.DeleteRow(tx.ctx, tx.sheet, rowNum)
	return errors.Wrapf(err, "deleting %s row %d", tx.sheet, rowNum)
}

func (tx *Tx) Append(row []string) error {
	tx.grid = nil
	return tx.store.append(tx.ctx, tx.sheet, row)
}

// Rewrite replaces the whole content of the sheet with grid.
func (tx *Tx) Rewrite(grid [][]string) error {
	tx.grid = nil
	backend := tx.store.backend
	if err := backend.EnsureSheet(tx.ctx, tx.sheet, nil); err != nil {
		return errors.Wrapf(err, "creating sheet %s", tx.sheet)
	}
	if err := backend.Clear(tx.ctx, tx.sheet); err != nil {
		return errors.Wrapf(err, "clearing %s", tx.sheet)
	}
	return errors.Wrapf(backend.Write(tx.ctx, tx.sheet, grid), "writing %s", tx.sheet)
}
