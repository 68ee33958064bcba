package teacher

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tuition/core"
)

const idPrefix = "TEA-"

// Teacher is one row of the Teachers sheet. Teachers are not linked to students.
type Teacher struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Contact string `json:"contact"`
}

// NewTeacher contains information needed to register a new Teacher.
type NewTeacher struct {
	Name    string `json:"name" validate:"required,min=2"`
	Subject string `json:"subject" validate:"required,min=3"`
	Contact string `json:"contact" validate:"required,min=10"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Subject = core.CleanString(nt.Subject)
	nt.Contact = core.CleanString(nt.Contact)
	return validate.Struct(nt)
}

// UpdateTeacher carries the same fields as the registration form.
type UpdateTeacher = NewTeacher

type QueryFilter struct {
	Search  string `query:"search"`
	Subject string `query:"subject"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
	qf.Subject = core.CleanString(qf.Subject)
}

func orderingField(t Teacher, name string) (string, bool) {
	switch name {
	case "id":
		return t.ID, true
	case "name":
		return t.Name, true
	case "subject":
		return t.Subject, true
	}
	return "", false
}
