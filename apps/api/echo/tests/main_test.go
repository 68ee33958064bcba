package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/tuition/apps/api/echo"
	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/invoice"
	"github.com/trezcool/tuition/core/pricing"
	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/core/teacher"
	emailsvc "github.com/trezcool/tuition/services/email"
	sheetrepos "github.com/trezcool/tuition/storage/spreadsheet/repos"
	"github.com/trezcool/tuition/testutil"
)

type (
	httpErr struct {
		Error string `json:"error"`
	}

	httpTest struct {
		name     string
		method   string
		path     string
		body     []byte
		wantCode int
		wantData []byte
	}

	rendererMock struct {
		html string
		err  error
	}

	suggesterMock struct {
		usage, patterns string
		err             error
	}

	testApp struct {
		*Server
		students  student.Repository
		teachers  teacher.Repository
		mailer    *emailsvc.ConsoleService
		renderer  *rendererMock
		suggester *suggesterMock
	}
)

func (r *rendererMock) Render(_ context.Context, html string) ([]byte, error) {
	r.html = html
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 test"), nil
}

func (s *suggesterMock) Suggest(_ context.Context, usage, patterns string) ([]string, error) {
	s.usage, s.patterns = usage, patterns
	if s.err != nil {
		return nil, s.err
	}
	return []string{"Send reminders", "Review prices"}, nil
}

// newApp returns a server over a fresh in-memory workbook.
func newApp(t *testing.T) testApp {
	conf := core.NewTestConfig()
	logger := testutil.NewLogger()
	core.ParseEmailTemplates(logger, conf)
	store, _ := testutil.NewStore(t, logger)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	students := sheetrepos.NewStudentRepository(store)
	teachers := sheetrepos.NewTeacherRepository(store)
	studentSvc := student.NewService(students, logger)
	teacherSvc := teacher.NewService(teachers, logger)
	priceSvc := pricing.NewService(sheetrepos.NewPriceRepository(store, logger), logger)
	renderer := &rendererMock{}
	suggester := &suggesterMock{}
	mailer := emailsvc.NewConsoleServiceMock(conf, logger)

	srv := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		StudentSvc: studentSvc,
		TeacherSvc: teacherSvc,
		PriceSvc:   priceSvc,
		InvoiceSvc: invoice.NewService(conf, studentSvc, teacherSvc, priceSvc, renderer, mailer),
		Renderer:   renderer,
		Suggester:  suggester,
		Validate:   validate,
		Translator: translator,
	})
	return testApp{
		Server:    srv,
		students:  students,
		teachers:  teachers,
		mailer:    mailer,
		renderer:  renderer,
		suggester: suggester,
	}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func (app testApp) do(method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	app.ServeHTTP(rec, req)
	return rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func marshallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshallList(): %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshall(%s): %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			checkCodeAndData(t, tt, app.do(method, tt.path, tt.body))
		})
	}
}

func defaultVersion() string {
	return pricing.Defaults().Version
}

func TestServer_home(t *testing.T) {
	app := newApp(t)
	rec := app.do(http.MethodGet, "/")
	if rec.Code != http.StatusOK || rec.Body.String() != "Welcome to Tuition Centre API!" {
		t.Errorf("home = %d %q", rec.Code, rec.Body.String())
	}
}
