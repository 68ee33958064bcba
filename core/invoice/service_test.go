package invoice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/pricing"
	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/core/teacher"
	emailsvc "github.com/trezcool/tuition/services/email"
	sheetrepos "github.com/trezcool/tuition/storage/spreadsheet/repos"
	"github.com/trezcool/tuition/testutil"
)

type rendererMock struct {
	html string
	err  error
}

func (r *rendererMock) Render(_ context.Context, html string) ([]byte, error) {
	r.html = html
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 test"), nil
}

type fixture struct {
	svc      *Service
	renderer *rendererMock
	mailer   *emailsvc.ConsoleService
	students student.Repository
	prices   *pricing.Service
}

func newFixture(t *testing.T) fixture {
	freeze(t)
	conf := core.NewTestConfig()
	logger := testutil.NewLogger()
	core.ParseEmailTemplates(logger, conf)
	store, _ := testutil.NewStore(t, logger)

	students := sheetrepos.NewStudentRepository(store)
	teachers := sheetrepos.NewTeacherRepository(store)
	prices := pricing.NewService(sheetrepos.NewPriceRepository(store, logger), logger)
	renderer := &rendererMock{}
	mailer := emailsvc.NewConsoleServiceMock(conf, logger)

	svc := NewService(
		conf,
		student.NewService(students, logger),
		teacher.NewService(teachers, logger),
		prices,
		renderer,
		mailer,
	)
	return fixture{svc: svc, renderer: renderer, mailer: mailer, students: students, prices: prices}
}

func TestService_ForGuardian(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ali := testutil.CreateStudent(t, f.students, testutil.NewStudent("Ali", "Mr Lee"))
	mei := testutil.CreateStudent(t, f.students, testutil.NewStudent("Mei", "Mr Lee", func(s *student.Student) {
		s.Subjects = "Math"
		s.Transport = core.No
		s.TransportArea = student.AreaNone
	}))
	testutil.CreateStudent(t, f.students, testutil.NewStudent("Tan", "Mrs Tan"))

	t.Run("all children", func(t *testing.T) {
		inv, err := f.svc.ForGuardian(ctx, GuardianRequest{Guardian: "Mr Lee"})
		require.NoError(t, err)

		assert.Equal(t, "INV-TEST", inv.Number)
		assert.Equal(t, "October", inv.Month)
		assert.Equal(t, []string{"12 Jalan Bunga", "Taman Indah"}, inv.Address)
		require.Len(t, inv.Lines, 2)
		assert.Equal(t, ali.ID, inv.Lines[0].StudentID)
		assert.Equal(t, 155.0, inv.Lines[0].Amount)
		assert.Equal(t, mei.ID, inv.Lines[1].StudentID)
		assert.Equal(t, 45.0, inv.Lines[1].Amount)
		assert.Equal(t, 200.0, inv.GrandTotal)
		assert.Equal(t, pricing.Defaults().Version, inv.PriceVersion)
	})

	t.Run("selected children", func(t *testing.T) {
		inv, err := f.svc.ForGuardian(ctx, GuardianRequest{Guardian: "Mr Lee", StudentIDs: []string{mei.ID}})
		require.NoError(t, err)
		require.Len(t, inv.Lines, 1)
		assert.Equal(t, 45.0, inv.GrandTotal)
	})

	t.Run("prices follow the stored table", func(t *testing.T) {
		table := f.prices.Table(ctx)
		table.Set(student.LevelPrimary4, "1", 50)
		_, err := f.prices.Update(ctx, table)
		require.NoError(t, err)

		inv, err := f.svc.ForGuardian(ctx, GuardianRequest{Guardian: "Mr Lee", StudentIDs: []string{mei.ID}})
		require.NoError(t, err)
		assert.Equal(t, 50.0, inv.GrandTotal)
	})

	t.Run("unknown guardian", func(t *testing.T) {
		_, err := f.svc.ForGuardian(ctx, GuardianRequest{Guardian: "Nobody"})
		assert.Equal(t, ErrNoStudents, err)
	})

	t.Run("no selected child", func(t *testing.T) {
		_, err := f.svc.ForGuardian(ctx, GuardianRequest{Guardian: "Mr Lee", StudentIDs: []string{"STU-0"}})
		assert.Equal(t, ErrNoStudents, err)
	})
}

func TestService_EmailToGuardian(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.CreateStudent(t, f.students, testutil.NewStudent("Ali", "Mr Lee"))

	inv, err := f.svc.EmailToGuardian(ctx, EmailRequest{
		GuardianRequest: GuardianRequest{Guardian: "Mr Lee"},
		Email:           "lee@example.com",
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(f.renderer.html, inv.Number))

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "lee@example.com", msg.To[0].Address)
	assert.Equal(t, "Invoice INV-TEST (October)", msg.Subject)
	assert.Contains(t, msg.TextContent, "RM155.00")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "invoice-INV-TEST.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)

	t.Run("render failure", func(t *testing.T) {
		f.renderer.err = &core.RenderError{Message: "browser unavailable", Err: errors.New("boom")}
		defer func() { f.renderer.err = nil }()

		_, err := f.svc.EmailToGuardian(ctx, EmailRequest{
			GuardianRequest: GuardianRequest{Guardian: "Mr Lee"},
			Email:           "lee@example.com",
		})
		var renderErr *core.RenderError
		assert.True(t, errors.As(err, &renderErr))
		assert.Len(t, f.mailer.Sent(), 1)
	})
}

func TestService_summaries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.CreateStudent(t, f.students, testutil.NewStudent("Ali", "Mr Lee"))
	testutil.CreateStudent(t, f.students, testutil.NewStudent("Bea", "Mrs Tan", func(s *student.Student) {
		s.Level = student.LevelSecondary1
		s.PaymentStatus = student.StatusOverdue
	}))

	summary := f.svc.LevelSummary(ctx)
	require.Len(t, summary.Groups, 2)
	assert.Equal(t, student.LevelPrimary4, summary.Groups[0].Level)
	assert.Equal(t, student.LevelSecondary1, summary.Groups[1].Level)
	assert.Equal(t, 155.0+170.0, summary.GrandTotal)

	overview := f.svc.Overview(ctx)
	assert.Equal(t, 2, overview.TotalStudents)
	assert.Equal(t, 0, overview.TotalTeachers)
	assert.Equal(t, 2, overview.PendingPayments)
	assert.Equal(t, 325.0, overview.MonthlyRevenue)
}
