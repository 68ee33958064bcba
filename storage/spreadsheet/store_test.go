package spreadsheet_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/storage/spreadsheet"
	"github.com/trezcool/tuition/storage/spreadsheet/inmem"
	"github.com/trezcool/tuition/testutil"
)

const sheet = "People"

var schema = spreadsheet.Schema{Sheet: sheet, Header: []string{"id", "name"}}

func newStore(t *testing.T, rows ...[]string) (*spreadsheet.Store, *inmem.Backend) {
	backend := inmem.New()
	store := spreadsheet.NewStore(backend, testutil.NewLogger(), schema)
	require.NoError(t, store.Init(context.Background()))
	for _, row := range rows {
		require.NoError(t, store.Append(context.Background(), sheet, row))
	}
	return store, backend
}

func TestStore_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("missing sheet", func(t *testing.T) {
		store, _ := newStore(t)
		rows, err := store.Fetch(ctx, "Nope")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
	t.Run("header only", func(t *testing.T) {
		store, _ := newStore(t)
		rows, err := store.Fetch(ctx, sheet)
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})
	t.Run("records", func(t *testing.T) {
		store, _ := newStore(t, []string{"1", "Ann"}, []string{"2"})
		rows, err := store.Fetch(ctx, sheet)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"1", "Ann"}, {"2"}}, rows)
	})
}

func TestStore_Append_createsRegisteredSheet(t *testing.T) {
	ctx := context.Background()
	store, backend := newStore(t)
	backend.Drop(sheet)

	require.NoError(t, store.Append(ctx, sheet, []string{"1", "Ann"}))
	grid, err := store.Grid(ctx, sheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "name"}, {"1", "Ann"}}, grid)

	err = store.Append(ctx, "Unknown", []string{"x"})
	assert.True(t, errors.Is(err, spreadsheet.ErrSheetNotFound))
}

func TestStore_FindRowIndex(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, []string{"1", "Ann"}, []string{"2", "Bob"}, []string{"2", "Dup"})

	tests := []struct {
		name   string
		sheet  string
		column string
		key    string
		want   int
	}{
		{name: "first record", sheet: sheet, column: "id", key: "1", want: 2},
		{name: "first match wins", sheet: sheet, column: "id", key: "2", want: 3},
		{name: "other column", sheet: sheet, column: "name", key: "Dup", want: 4},
		{name: "header is not a record", sheet: sheet, column: "id", key: "id", want: spreadsheet.NotFound},
		{name: "unknown key", sheet: sheet, column: "id", key: "9", want: spreadsheet.NotFound},
		{name: "unknown column", sheet: sheet, column: "nope", key: "1", want: spreadsheet.NotFound},
		{name: "missing sheet", sheet: "Nope", column: "id", key: "1", want: spreadsheet.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.FindRowIndex(ctx, tt.sheet, tt.column, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, []string{"1", "Ann"}, []string{"2", "Bob"}, []string{"3", "Cid"})

	require.NoError(t, store.Update(ctx, sheet, "id", "2", []string{"2", "Bobby"}))
	require.NoError(t, store.UpdateAt(ctx, sheet, 4, []string{"3", "Cyd"}))
	rows, _ := store.Fetch(ctx, sheet)
	assert.Equal(t, [][]string{{"1", "Ann"}, {"2", "Bobby"}, {"3", "Cyd"}}, rows)

	require.NoError(t, store.Delete(ctx, sheet, "id", "2"))
	rows, _ = store.Fetch(ctx, sheet)
	assert.Equal(t, [][]string{{"1", "Ann"}, {"3", "Cyd"}}, rows)

	idx, err := store.FindRowIndex(ctx, sheet, "id", "2")
	require.NoError(t, err)
	assert.Equal(t, spreadsheet.NotFound, idx)
	assert.Equal(t, spreadsheet.ErrRowNotFound, store.Update(ctx, sheet, "id", "2", []string{"2", "X"}))
	assert.Equal(t, spreadsheet.ErrRowNotFound, store.Delete(ctx, sheet, "id", "2"))
	assert.Equal(t, spreadsheet.ErrRowNotFound, store.UpdateAt(ctx, sheet, 1, []string{"h"}))
}

func TestStore_BatchRewrite(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, []string{"1", "Ann"}, []string{"2", "Bob"})

	require.NoError(t, store.BatchRewrite(ctx, sheet, func(grid [][]string) ([][]string, error) {
		grid[0] = append(grid[0], "age")
		grid[1] = append(grid[1], "7")
		return grid[:2], nil
	}))
	grid, _ := store.Grid(ctx, sheet)
	assert.Equal(t, [][]string{{"id", "name", "age"}, {"1", "Ann", "7"}}, grid)

	boom := errors.New("boom")
	err := store.BatchRewrite(ctx, sheet, func(grid [][]string) ([][]string, error) {
		grid[1][1] = "changed"
		return nil, boom
	})
	assert.Equal(t, boom, err)
	after, _ := store.Grid(ctx, sheet)
	assert.Equal(t, grid, after)
}

// Concurrent deletes & appends must never remove the wrong record.
func TestStore_concurrentMutations(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	const n = 40
	for i := 0; i < n; i++ {
		require.NoError(t, store.Append(ctx, sheet, []string{fmt.Sprint(i), fmt.Sprint("name-", i)}))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i += 2 {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Delete(ctx, sheet, "id", fmt.Sprint(i)))
		}(i)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Append(ctx, sheet, []string{fmt.Sprint("new-", i), "x"}))
		}(i)
	}
	wg.Wait()

	rows, err := store.Fetch(ctx, sheet)
	require.NoError(t, err)
	assert.Len(t, rows, n)
	remaining := make(map[string]bool)
	for _, row := range rows {
		remaining[row[0]] = true
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, i%2 == 1, remaining[fmt.Sprint(i)], "record %d", i)
	}
}
