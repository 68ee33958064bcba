package invoice

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/student"
)

// Flexible fee types
const (
	FeeAddition  = "Addition"
	FeeDeduction = "Deduction"
)

// MonthCurrent bills the month the invoice is issued in.
const MonthCurrent = "current"

// DefaultNotes explains the transport codes printed next to each line.
const DefaultNotes = "T(I): Transport (BP area)\nT(O): Transport (Out of BP)"

// FlexibleFee is a one-off amount added to or deducted from an invoice.
type FlexibleFee struct {
	Description string  `json:"description" validate:"required"`
	Details     string  `json:"details"`
	Type        string  `json:"type" validate:"required,oneof=Addition Deduction"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

// Signed is the amount of f as it counts in the invoice total.
func (f FlexibleFee) Signed() float64 {
	if f.Type == FeeDeduction {
		return -f.Amount
	}
	return f.Amount
}

// DefaultFlexibleFees are offered on every new invoice, all at zero.
func DefaultFlexibleFees() []FlexibleFee {
	return []FlexibleFee{
		{Description: "New Registration", Details: "One-time fee", Type: FeeAddition},
		{Description: "Personal Tuition", Details: "1 Person", Type: FeeAddition},
		{Description: "Worksheet", Details: "Once a year (3P)", Type: FeeAddition},
	}
}

// Line is the monthly fee of one student.
type Line struct {
	StudentID string  `json:"studentId"`
	Student   string  `json:"student"`
	Subjects  string  `json:"subjects"`
	Note      string  `json:"note"`
	Qty       int     `json:"qty"`
	Level     string  `json:"level"`
	LevelCode string  `json:"levelCode"`
	Tuition   float64 `json:"tuition"`
	Transport float64 `json:"transport"`
	Amount    float64 `json:"amount"`
}

type Invoice struct {
	Number        string        `json:"number"`
	Date          time.Time     `json:"date"`
	Month         string        `json:"month"`
	Guardian      string        `json:"guardian"`
	Contact       string        `json:"contact"`
	Address       []string      `json:"address"`
	Currency      string        `json:"currency"`
	Lines         []Line        `json:"lines"`
	FlexibleFees  []FlexibleFee `json:"flexibleFees"`
	Notes         string        `json:"notes"`
	Subtotal      float64       `json:"subtotal"`
	FlexibleTotal float64       `json:"flexibleTotal"`
	Discount      float64       `json:"discount"`
	GrandTotal    float64       `json:"grandTotal"`
	PriceVersion  string        `json:"priceVersion"`
}

// Options are the per-invoice inputs entered by the admin.
// A nil FlexibleFees gets the defaults; a nil Notes gets DefaultNotes.
type Options struct {
	Month        string        `json:"month"`
	FlexibleFees []FlexibleFee `json:"flexibleFees" validate:"omitempty,dive"`
	Discount     float64       `json:"discount" validate:"gte=0"`
	Notes        *string       `json:"notes"`
}

// GuardianRequest asks for the invoice of one guardian's children.
// StudentIDs restricts the invoice to some of the children.
type GuardianRequest struct {
	Guardian   string   `json:"guardian" validate:"required"`
	StudentIDs []string `json:"studentIds"`
	Options
}

func (gr *GuardianRequest) clean() {
	gr.Guardian = core.CleanString(gr.Guardian)
	gr.Month = core.CleanString(gr.Month)
	for i := range gr.FlexibleFees {
		gr.FlexibleFees[i].Description = core.CleanString(gr.FlexibleFees[i].Description)
		gr.FlexibleFees[i].Details = core.CleanString(gr.FlexibleFees[i].Details)
		gr.FlexibleFees[i].Type = core.CleanString(gr.FlexibleFees[i].Type)
	}
}

func (gr *GuardianRequest) Validate(validate *validator.Validate) error {
	gr.clean()
	return validate.Struct(gr)
}

// EmailRequest sends a guardian invoice as a PDF attachment.
type EmailRequest struct {
	GuardianRequest
	Email string `json:"email" validate:"required,email"`
}

func (er *EmailRequest) Validate(validate *validator.Validate) error {
	er.GuardianRequest.clean()
	er.Email = core.CleanString(er.Email)
	return validate.Struct(er)
}

// LevelGroup is the grouped-invoice view of one level.
type LevelGroup struct {
	Level      string  `json:"level"`
	Lines      []Line  `json:"lines"`
	GrandTotal float64 `json:"grandTotal"`
}

type LevelSummary struct {
	Groups       []LevelGroup `json:"groups"`
	GrandTotal   float64      `json:"grandTotal"`
	PriceVersion string       `json:"priceVersion"`
}

// Overview is the dashboard headline figures.
type Overview struct {
	TotalStudents   int            `json:"totalStudents"`
	TotalTeachers   int            `json:"totalTeachers"`
	PendingPayments int            `json:"pendingPayments"`
	MonthlyRevenue  float64        `json:"monthlyRevenue"`
	ByLevel         map[string]int `json:"byLevel"`
	ByStatus        map[string]int `json:"byStatus"`
	Transport       int            `json:"transport"`
	FirstTime       int            `json:"firstTime"`
}

func isPending(s student.Student) bool {
	return s.PaymentStatus == student.StatusPending || s.PaymentStatus == student.StatusOverdue
}
