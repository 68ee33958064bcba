// Package gsheets keeps the workbook in a Google spreadsheet, through the Sheets v4 API.
package gsheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/storage/spreadsheet"
)

// Values are written verbatim: phone numbers & ids must not be reinterpreted as numbers or dates.
const valueInputOption = "RAW"

type Backend struct {
	srv           *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64 // {title: sheetId}
}

var _ spreadsheet.Backend = (*Backend)(nil)

// NewServiceAccountClient authenticates as the configured service account.
func NewServiceAccountClient(ctx context.Context, conf *core.Config) *http.Client {
	cfg := &jwt.Config{
		Email:      conf.Store.ServiceAccountEmail,
		PrivateKey: []byte(conf.Store.ServiceAccountKey),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
	return cfg.Client(ctx)
}

// New connects to the spreadsheet. opts override the default service account client.
func New(ctx context.Context, conf *core.Config, opts ...option.ClientOption) (*Backend, error) {
	if conf.Store.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet id is not configured")
	}
	if len(opts) == 0 {
		opts = []option.ClientOption{option.WithHTTPClient(NewServiceAccountClient(ctx, conf))}
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating sheets service")
	}
	return &Backend{srv: srv, spreadsheetID: conf.Store.SpreadsheetID}, nil
}

// a1 quotes sheet as an A1 notation range, optionally suffixed by a cell.
func a1(sheet string, cell ...string) string {
	r := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if len(cell) > 0 {
		r += "!" + cell[0]
	}
	return r
}

func toValues(rows ...[]string) [][]interface{} {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, v := range row {
			values[i][j] = v
		}
	}
	return values
}

func fromValues(values [][]interface{}) [][]string {
	grid := make([][]string, len(values))
	for i, row := range values {
		grid[i] = make([]string, len(row))
		for j, v := range row {
			if v != nil {
				grid[i][j] = fmt.Sprint(v)
			}
		}
	}
	return grid
}

// sheetID resolves the numeric id of sheet, refreshing the cached metadata on a miss.
func (b *Backend) sheetID(ctx context.Context, sheet string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := b.sheetIDs[sheet]; ok {
		return id, nil
	}

	ss, err := b.srv.Spreadsheets.Get(b.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, errors.Wrap(err, "fetching spreadsheet metadata")
	}
	b.sheetIDs = make(map[string]int64, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			b.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	id, ok := b.sheetIDs[sheet]
	if !ok {
		return 0, spreadsheet.ErrSheetNotFound
	}
	return id, nil
}

func (b *Backend) forget(sheet string) {
	b.mu.Lock()
	delete(b.sheetIDs, sheet)
	b.mu.Unlock()
}

// notFound maps the API's "Unable to parse range" answer for a deleted sheet.
func (b *Backend) notFound(sheet string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "Unable to parse range") {
		b.forget(sheet)
		return spreadsheet.ErrSheetNotFound
	}
	return err
}

func (b *Backend) Values(ctx context.Context, sheet string) ([][]string, error) {
	if _, err := b.sheetID(ctx, sheet); err != nil {
		return nil, err
	}
	resp, err := b.srv.Spreadsheets.Values.Get(b.spreadsheetID, a1(sheet)).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(b.notFound(sheet, err), "reading %s", sheet)
	}
	return fromValues(resp.Values), nil
}

func (b *Backend) Append(ctx context.Context, sheet string, row []string) error {
	if _, err := b.sheetID(ctx, sheet); err != nil {
		return err
	}
	_, err := b.srv.Spreadsheets.Values.
		Append(b.spreadsheetID, a1(sheet), &sheets.ValueRange{Values: toValues(row)}).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return b.notFound(sheet, err)
}

func (b *Backend) UpdateRow(ctx context.Context, sheet string, rowNum int, row []string) error {
	_, err := b.srv.Spreadsheets.Values.
		Update(b.spreadsheetID, a1(sheet, fmt.Sprintf("A%d", rowNum)), &sheets.ValueRange{Values: toValues(row)}).
		ValueInputOption(valueInputOption).
		Context(ctx).Do()
	return b.notFound(sheet, err)
}

func (b *Backend) DeleteRow(ctx context.Context, sheet string, rowNum int) error {
	id, err := b.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    id,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1),
					EndIndex:   int64(rowNum),
					// the first sheet has id 0, which would otherwise be omitted
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}
	_, err = b.srv.Spreadsheets.BatchUpdate(b.spreadsheetID, req).Context(ctx).Do()
	return err
}

func (b *Backend) Clear(ctx context.Context, sheet string) error {
	_, err := b.srv.Spreadsheets.Values.Clear(b.spreadsheetID, a1(sheet), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return b.notFound(sheet, err)
}

func (b *Backend) Write(ctx context.Context, sheet string, grid [][]string) error {
	if len(grid) == 0 {
		return nil
	}
	_, err := b.srv.Spreadsheets.Values.
		Update(b.spreadsheetID, a1(sheet, "A1"), &sheets.ValueRange{Values: toValues(grid...)}).
		ValueInputOption(valueInputOption).
		Context(ctx).Do()
	return b.notFound(sheet, err)
}

func (b *Backend) EnsureSheet(ctx context.Context, sheet string, header []string) error {
	_, err := b.sheetID(ctx, sheet)
	switch {
	case errors.Is(err, spreadsheet.ErrSheetNotFound):
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: sheet}},
			}},
		}
		if _, err = b.srv.Spreadsheets.BatchUpdate(b.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return errors.Wrapf(err, "adding sheet %s", sheet)
		}
		b.forget(sheet)
	case err != nil:
		return err
	}

	if len(header) == 0 {
		return nil
	}
	grid, err := b.Values(ctx, sheet)
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return b.Write(ctx, sheet, [][]string{header})
	}
	return nil
}
