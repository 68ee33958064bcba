package student

import (
	"strings"

	"github.com/trezcool/tuition/core"
)

// Levels, in display order. The price sheet has one column per level.
const (
	LevelPrimary1   = "Primary 1"
	LevelPrimary2   = "Primary 2"
	LevelPrimary3   = "Primary 3"
	LevelPrimary4   = "Primary 4"
	LevelPrimary5   = "Primary 5"
	LevelPrimary6   = "Primary 6"
	LevelSecondary1 = "Secondary 1"
	LevelSecondary2 = "Secondary 2"
	LevelSecondary3 = "Secondary 3"
	LevelSecondary5 = "Secondary 5"
	LevelSecondary6 = "Secondary 6"
)

// Payment statuses
const (
	StatusPaid    = "Paid"
	StatusPending = "Pending"
	StatusOverdue = "Overdue"
)

// Transport areas
const (
	AreaInside  = "Inside Limit"
	AreaOutside = "Outside Limit"
	AreaNone    = "N/A"
)

const idPrefix = "STU-"

var (
	Levels = []string{
		LevelPrimary1, LevelPrimary2, LevelPrimary3, LevelPrimary4, LevelPrimary5, LevelPrimary6,
		LevelSecondary1, LevelSecondary2, LevelSecondary3, LevelSecondary5, LevelSecondary6,
	}
	PaymentStatuses = []string{StatusPaid, StatusPending, StatusOverdue}
	TransportAreas  = []string{AreaInside, AreaOutside, AreaNone}
)

func IsLevel(s string) bool         { return contains(Levels, s) }
func IsPaymentStatus(s string) bool { return contains(PaymentStatuses, s) }

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Student is one row of the Students sheet.
// Rows are decoded positionally and never rejected, so any field may hold an unexpected value.
type Student struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Level           string `json:"level"`
	Subjects        string `json:"subjects"` // comma separated
	Guardian        string `json:"guardian"`
	GuardianContact string `json:"guardianContact"`
	Address         string `json:"address"`
	Transport       string `json:"transport"`     // Yes | No
	TransportArea   string `json:"transportArea"` // Inside Limit | Outside Limit | N/A
	PaymentStatus   string `json:"paymentStatus"`
	FirstTime       string `json:"firstTime"` // Yes | No
}

// SubjectList returns the trimmed, non-empty entries of the subjects field.
func (s Student) SubjectList() []string {
	parts := strings.Split(s.Subjects, ",")
	subjects := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			subjects = append(subjects, p)
		}
	}
	return subjects
}

// SubjectCount drives tuition pricing: "Math, , English," counts 2.
func (s Student) SubjectCount() int {
	return len(s.SubjectList())
}

func (s Student) UsesTransport() bool {
	return s.Transport == core.Yes
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Name            string `json:"name" validate:"required,min=2"`
	Level           string `json:"level" validate:"required,level"`
	Subjects        string `json:"subjects" validate:"required,min=3"`
	Guardian        string `json:"guardian" validate:"required,min=2"`
	GuardianContact string `json:"guardianContact" validate:"required,min=10"`
	Address         string `json:"address" validate:"required,min=10"`
	Transport       string `json:"transport" validate:"required,yesno"`
	TransportArea   string `json:"transportArea" validate:"omitempty,transport_area"`
	FirstTime       string `json:"firstTime" validate:"required,yesno"`
}

func (ns *NewStudent) clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.Level = core.CleanString(ns.Level)
	ns.Subjects = core.CleanString(ns.Subjects)
	ns.Guardian = core.CleanString(ns.Guardian)
	ns.GuardianContact = core.CleanString(ns.GuardianContact)
	ns.Address = core.CleanString(ns.Address)
	ns.Transport = core.CleanString(ns.Transport)
	ns.TransportArea = core.CleanString(ns.TransportArea)
	ns.FirstTime = core.CleanString(ns.FirstTime)
}

// UpdateStudent is the full edit form. PaymentStatus is kept when left empty.
type UpdateStudent struct {
	NewStudent
	PaymentStatus string `json:"paymentStatus" validate:"omitempty,payment_status"`
}

// StatusUpdate is the quick payment status change.
type StatusUpdate struct {
	PaymentStatus string `json:"paymentStatus" validate:"required,payment_status"`
}

func (su *StatusUpdate) clean() {
	su.PaymentStatus = core.CleanString(su.PaymentStatus)
}

type QueryFilter struct {
	Search        string `query:"search"`
	Level         string `query:"level"`
	PaymentStatus string `query:"payment_status"`
	Guardian      string `query:"guardian"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Level == "" && qf.PaymentStatus == "" && qf.Guardian == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
	qf.Level = core.CleanString(qf.Level)
	qf.PaymentStatus = core.CleanString(qf.PaymentStatus)
	qf.Guardian = core.CleanString(qf.Guardian)
}

func (qf *QueryFilter) matches(s Student) bool {
	if qf.Level != "" && s.Level != qf.Level {
		return false
	}
	if qf.PaymentStatus != "" && s.PaymentStatus != qf.PaymentStatus {
		return false
	}
	if qf.Guardian != "" && s.Guardian != qf.Guardian {
		return false
	}
	if qf.Search != "" {
		return strings.Contains(strings.ToLower(s.Name), qf.Search) ||
			strings.Contains(strings.ToLower(s.ID), qf.Search) ||
			strings.Contains(strings.ToLower(s.Guardian), qf.Search)
	}
	return true
}

// orderingField maps API ordering names to Student values.
func orderingField(s Student, name string) (string, bool) {
	switch name {
	case "id":
		return s.ID, true
	case "name":
		return s.Name, true
	case "level":
		return s.Level, true
	case "guardian":
		return s.Guardian, true
	case "payment_status", "paymentStatus":
		return s.PaymentStatus, true
	}
	return "", false
}

// Guardian groups the registered children of one guardian.
type Guardian struct {
	Name     string    `json:"name"`
	Contact  string    `json:"contact"`
	Children []Student `json:"children"`
}
