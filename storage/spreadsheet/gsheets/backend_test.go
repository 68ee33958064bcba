package gsheets_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/storage/spreadsheet"
	"github.com/trezcool/tuition/storage/spreadsheet/gsheets"
	"github.com/trezcool/tuition/storage/spreadsheet/inmem"
	"github.com/trezcool/tuition/testutil"
)

const spreadsheetID = "test-spreadsheet"

// fakeSheets serves the subset of the Sheets v4 API used by the backend, over an in-memory workbook.
type fakeSheets struct {
	t      *testing.T
	mu     sync.Mutex
	book   *inmem.Backend
	ids    map[string]int64
	nextID int64

	valueInputOptions []string
	deleteRanges      []map[string]interface{}
}

func newFakeSheets(t *testing.T, titles ...string) *fakeSheets {
	f := &fakeSheets{t: t, book: inmem.New(), ids: make(map[string]int64)}
	for _, title := range titles {
		f.addSheet(title)
	}
	return f
}

func (f *fakeSheets) addSheet(title string) {
	f.ids[title] = f.nextID
	f.nextID++
	f.book.Load(title, nil)
}

func (f *fakeSheets) title(id int64) string {
	for title, sid := range f.ids {
		if sid == id {
			return title
		}
	}
	return ""
}

// parseRange splits 'Sheet'!A3 into its title and row number (0 when absent).
func parseRange(r string) (string, int) {
	title, cell, _ := strings.Cut(r, "!")
	title = strings.ReplaceAll(strings.Trim(title, "'"), "''", "'")
	row, _ := strconv.Atoi(strings.TrimLeft(cell, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	return title, row
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func badRange(w http.ResponseWriter, r string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    http.StatusBadRequest,
			"message": "Unable to parse range: " + r,
			"status":  "INVALID_ARGUMENT",
		},
	})
}

func toGrid(values [][]interface{}) [][]string {
	grid := make([][]string, len(values))
	for i, row := range values {
		for _, v := range row {
			grid[i] = append(grid[i], fmt.Sprint(v))
		}
	}
	return grid
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ctx := r.Context()

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/"+spreadsheetID)
	body, _ := io.ReadAll(r.Body)

	switch {
	case path == "" && r.Method == http.MethodGet:
		ss := sheets.Spreadsheet{}
		for title, id := range f.ids {
			ss.Sheets = append(ss.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title, SheetId: id}})
		}
		writeJSON(w, http.StatusOK, ss)

	case path == ":batchUpdate":
		var raw struct {
			Requests []map[string]json.RawMessage `json:"requests"`
		}
		require.NoError(f.t, json.Unmarshal(body, &raw))
		var req sheets.BatchUpdateSpreadsheetRequest
		require.NoError(f.t, json.Unmarshal(body, &req))
		for i, rq := range req.Requests {
			switch {
			case rq.AddSheet != nil:
				f.addSheet(rq.AddSheet.Properties.Title)
			case rq.DeleteDimension != nil:
				var dd struct {
					Range map[string]interface{} `json:"range"`
				}
				require.NoError(f.t, json.Unmarshal(raw.Requests[i]["deleteDimension"], &dd))
				f.deleteRanges = append(f.deleteRanges, dd.Range)
				dr := rq.DeleteDimension.Range
				require.NoError(f.t, f.book.DeleteRow(ctx, f.title(dr.SheetId), int(dr.StartIndex)+1))
			}
		}
		writeJSON(w, http.StatusOK, sheets.BatchUpdateSpreadsheetResponse{SpreadsheetId: spreadsheetID})

	case strings.HasPrefix(path, "/values/"):
		rng, op, _ := strings.Cut(strings.TrimPrefix(path, "/values/"), ":")
		title, row := parseRange(rng)
		if _, ok := f.ids[title]; !ok {
			badRange(w, rng)
			return
		}
		if opt := r.URL.Query().Get("valueInputOption"); opt != "" {
			f.valueInputOptions = append(f.valueInputOptions, opt)
		}
		var vr sheets.ValueRange
		if len(body) > 0 {
			require.NoError(f.t, json.Unmarshal(body, &vr))
		}

		switch {
		case op == "append":
			for _, values := range toGrid(vr.Values) {
				require.NoError(f.t, f.book.Append(ctx, title, values))
			}
			writeJSON(w, http.StatusOK, sheets.AppendValuesResponse{})
		case op == "clear":
			require.NoError(f.t, f.book.Clear(ctx, title))
			writeJSON(w, http.StatusOK, sheets.ClearValuesResponse{})
		case r.Method == http.MethodPut:
			for i, values := range toGrid(vr.Values) {
				require.NoError(f.t, f.book.UpdateRow(ctx, title, row+i, values))
			}
			writeJSON(w, http.StatusOK, sheets.UpdateValuesResponse{})
		default:
			grid, err := f.book.Values(ctx, title)
			require.NoError(f.t, err)
			values := make([][]interface{}, len(grid))
			for i, row := range grid {
				for _, v := range row {
					values[i] = append(values[i], v)
				}
			}
			writeJSON(w, http.StatusOK, sheets.ValueRange{Range: rng, Values: values})
		}

	default:
		f.t.Errorf("unexpected request %s %s: %s", r.Method, r.URL.Path, bytes.TrimSpace(body))
		w.WriteHeader(http.StatusNotFound)
	}
}

func newBackend(t *testing.T, fake *fakeSheets) *gsheets.Backend {
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	conf := core.NewTestConfig()
	conf.Store.SpreadsheetID = spreadsheetID
	backend, err := gsheets.New(context.Background(), conf,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return backend
}

func TestNew_missingSpreadsheetID(t *testing.T) {
	_, err := gsheets.New(context.Background(), core.NewTestConfig(), option.WithoutAuthentication())
	assert.Error(t, err)
}

func TestBackend_store(t *testing.T) {
	ctx := context.Background()
	fake := newFakeSheets(t, "Sheet1")
	store := spreadsheet.NewStore(newBackend(t, fake), testutil.NewLogger(),
		spreadsheet.Schema{Sheet: "Students", Header: []string{"id", "name", "contact"}},
		spreadsheet.Schema{Sheet: "Sheet1", Header: []string{"id"}},
	)
	require.NoError(t, store.Init(ctx))

	require.NoError(t, store.Append(ctx, "Students", []string{"STU-1", "Ann", "0123456789"}))
	require.NoError(t, store.Append(ctx, "Students", []string{"STU-2", "Bob", "0198765432"}))
	require.NoError(t, store.Update(ctx, "Students", "id", "STU-2", []string{"STU-2", "Bobby", "0198765432"}))
	require.NoError(t, store.Delete(ctx, "Students", "id", "STU-1"))

	rows, err := store.Fetch(ctx, "Students")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"STU-2", "Bobby", "0198765432"}}, rows)

	for _, opt := range fake.valueInputOptions {
		assert.Equal(t, "RAW", opt)
	}

	t.Run("first sheet has id zero", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, "Sheet1", []string{"x"}))
		require.NoError(t, store.Delete(ctx, "Sheet1", "id", "x"))

		last := fake.deleteRanges[len(fake.deleteRanges)-1]
		assert.Equal(t, float64(0), last["sheetId"])
		assert.Equal(t, float64(1), last["startIndex"])
	})

	t.Run("deleted sheet", func(t *testing.T) {
		fake.mu.Lock()
		delete(fake.ids, "Students")
		fake.book.Drop("Students")
		fake.mu.Unlock()

		rows, err := store.Fetch(ctx, "Students")
		require.NoError(t, err)
		assert.Empty(t, rows)

		// recreated on demand
		require.NoError(t, store.Append(ctx, "Students", []string{"STU-3", "Cid", ""}))
		grid, err := store.Grid(ctx, "Students")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name", "contact"}, grid[0])
		assert.Equal(t, "STU-3", grid[1][0])
	})
}
