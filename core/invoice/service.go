package invoice

import (
	"bytes"
	"context"
	"errors"
	"net/mail"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/pricing"
	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/core/teacher"
)

// ErrNoStudents is returned when a guardian has no registered child to bill.
var ErrNoStudents = errors.New("guardian has no registered students")

type Service struct {
	students *student.Service
	teachers *teacher.Service
	prices   *pricing.Service
	renderer core.PDFRenderer
	mailer   core.EmailService
	conf     *core.Config
}

func NewService(
	conf *core.Config,
	students *student.Service,
	teachers *teacher.Service,
	prices *pricing.Service,
	renderer core.PDFRenderer,
	mailer core.EmailService,
) *Service {
	return &Service{
		students: students,
		teachers: teachers,
		prices:   prices,
		renderer: renderer,
		mailer:   mailer,
		conf:     conf,
	}
}

// ForGuardian builds the invoice of a guardian's children, priced with the current table.
func (svc *Service) ForGuardian(ctx context.Context, req GuardianRequest) (Invoice, error) {
	filter := &student.QueryFilter{Guardian: req.Guardian}
	children := svc.students.Query(ctx, filter, nil)
	if len(req.StudentIDs) > 0 {
		wanted := make(map[string]bool, len(req.StudentIDs))
		for _, id := range req.StudentIDs {
			wanted[id] = true
		}
		selected := children[:0]
		for _, s := range children {
			if wanted[s.ID] {
				selected = append(selected, s)
			}
		}
		children = selected
	}
	if len(children) == 0 {
		return Invoice{}, ErrNoStudents
	}

	guardian := student.GroupByGuardian(children)[0]
	return Build(guardian, svc.prices.Table(ctx), req.Options, svc.conf.Currency), nil
}

// PDF renders inv through the PDF collaborator.
func (svc *Service) PDF(ctx context.Context, inv Invoice) ([]byte, error) {
	html, err := RenderHTML(inv, svc.conf.Invoice)
	if err != nil {
		return nil, err
	}
	return svc.renderer.Render(ctx, html)
}

func (svc *Service) PDFForGuardian(ctx context.Context, req GuardianRequest) (Invoice, []byte, error) {
	inv, err := svc.ForGuardian(ctx, req)
	if err != nil {
		return Invoice{}, nil, err
	}
	pdf, err := svc.PDF(ctx, inv)
	if err != nil {
		return Invoice{}, nil, err
	}
	return inv, pdf, nil
}

// EmailToGuardian renders the invoice & queues it for delivery as a PDF attachment.
func (svc *Service) EmailToGuardian(ctx context.Context, req EmailRequest) (Invoice, error) {
	inv, pdf, err := svc.PDFForGuardian(ctx, req.GuardianRequest)
	if err != nil {
		return Invoice{}, err
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: inv.Guardian, Address: req.Email}},
		Subject:      "Invoice " + inv.Number + " (" + inv.Month + ")",
		TemplateName: "invoice",
		TemplateData: inv,
	}
	if err := msg.Attach(bytes.NewReader(pdf), Filename(inv), "application/pdf"); err != nil {
		return Invoice{}, pkgerrors.Wrap(err, "attaching invoice")
	}
	svc.mailer.SendMessages(msg)
	return inv, nil
}

// Filename is the download name of the invoice PDF.
func Filename(inv Invoice) string {
	return "invoice-" + inv.Number + ".pdf"
}

// LevelSummary prices every student, grouped per level.
func (svc *Service) LevelSummary(ctx context.Context) LevelSummary {
	return SummarizeByLevel(svc.students.QueryAll(ctx), svc.prices.Table(ctx), svc.conf.Currency)
}

func (svc *Service) Overview(ctx context.Context) Overview {
	return NewOverview(
		svc.students.QueryAll(ctx),
		len(svc.teachers.QueryAll(ctx)),
		svc.prices.Table(ctx),
	)
}
