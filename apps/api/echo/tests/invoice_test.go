package tests

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/invoice"
	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/testutil"
)

func Test_invoiceApi(t *testing.T) {
	app := newApp(t)
	testutil.CreateStudent(t, app.students, testutil.NewStudent("Ali", "Mr Lee"))
	mei := testutil.CreateStudent(t, app.students, testutil.NewStudent("Mei", "Mr Lee", func(s *student.Student) {
		s.Level = student.LevelSecondary1
		s.Subjects = "Math"
		s.Transport = core.No
		s.TransportArea = student.AreaNone
	}))

	runHTTPTests(t, app, []httpTest{
		{
			name: "guardian required", method: http.MethodPost, path: "/v1/invoices/guardian",
			body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"guardian":"this field is required"}`),
		},
		{
			name: "unknown guardian", method: http.MethodPost, path: "/v1/invoices/guardian",
			body: []byte(`{"guardian":"Nobody"}`), wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: invoice.ErrNoStudents.Error()}),
		},
		{
			name: "email required", method: http.MethodPost, path: "/v1/invoices/guardian/email",
			body: []byte(`{"guardian":"Mr Lee"}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email":"this field is required"}`),
		},
		{
			name: "render without html", method: http.MethodPost, path: "/v1/render/pdf",
			body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "Missing htmlContent"}),
		},
	})

	t.Run("guardian", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/invoices/guardian", []byte(`{"guardian":"Mr Lee","discount":5}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var inv invoice.Invoice
		unmarshall(t, rec, &inv)
		assert.Len(t, inv.Lines, 2)
		assert.Equal(t, 205.0, inv.Subtotal)
		assert.Equal(t, 200.0, inv.GrandTotal)
		assert.Len(t, inv.FlexibleFees, 3)
	})

	t.Run("selected children", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/invoices/guardian", []byte(`{"guardian":"Mr Lee","studentIds":["`+mei.ID+`"]}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var inv invoice.Invoice
		unmarshall(t, rec, &inv)
		assert.Len(t, inv.Lines, 1)
		assert.Equal(t, 50.0, inv.GrandTotal)
	})

	t.Run("guardian pdf", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/invoices/guardian/pdf", []byte(`{"guardian":"Mr Lee"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Regexp(t, `^attachment; filename="invoice-INV-[0-9a-f]{8}\.pdf"$`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.4 test", rec.Body.String())
		assert.Contains(t, app.renderer.html, "Mr Lee")
	})

	t.Run("guardian email", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/invoices/guardian/email", []byte(`{"guardian":"Mr Lee","email":"lee@test.my","month":"October"}`))
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

		sent := app.mailer.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "lee@test.my", sent[0].To[0].Address)
		assert.Contains(t, sent[0].Subject, "(October)")
		require.Len(t, sent[0].Attachments, 1)
	})

	t.Run("levels", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/v1/invoices/levels")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var summary invoice.LevelSummary
		unmarshall(t, rec, &summary)
		require.Len(t, summary.Groups, 2)
		assert.Equal(t, student.LevelPrimary4, summary.Groups[0].Level)
		assert.Equal(t, student.LevelSecondary1, summary.Groups[1].Level)
		assert.Equal(t, 205.0, summary.GrandTotal)
	})

	t.Run("render", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/v1/render/pdf", []byte(`{"htmlContent":"<p>hi</p>"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, "<p>hi</p>", app.renderer.html)
	})

	t.Run("render failure", func(t *testing.T) {
		app.renderer.err = &core.RenderError{Message: "Failed to generate PDF", Err: errors.New("chrome crashed")}
		defer func() { app.renderer.err = nil }()

		rec := app.do(http.MethodPost, "/v1/render/pdf", []byte(`{"htmlContent":"<p>hi</p>"}`))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusInternalServerError,
			wantData: []byte(`{"error":"Failed to generate PDF","details":"chrome crashed"}`),
		}, rec)
	})
}
