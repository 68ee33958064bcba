package sheetrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/storage/spreadsheet"
)

// Students sheet columns
const (
	colStudentID = iota
	colStudentName
	colStudentLevel
	colStudentSubjects
	colStudentGuardian
	colStudentGuardianContact
	colStudentAddress
	colStudentTransport
	colStudentTransportArea
	colStudentPaymentStatus
	colStudentFirstTime
	studentColumns
)

type studentRepository struct {
	store *spreadsheet.Store
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(store *spreadsheet.Store) *studentRepository {
	return &studentRepository{store: store}
}

// decodeStudent never fails: missing cells decode as empty fields.
func decodeStudent(row []string) student.Student {
	c := func(i int) string { return spreadsheet.Cell(row, i) }
	return student.Student{
		ID:              c(colStudentID),
		Name:            c(colStudentName),
		Level:           c(colStudentLevel),
		Subjects:        c(colStudentSubjects),
		Guardian:        c(colStudentGuardian),
		GuardianContact: c(colStudentGuardianContact),
		Address:         c(colStudentAddress),
		Transport:       c(colStudentTransport),
		TransportArea:   c(colStudentTransportArea),
		PaymentStatus:   c(colStudentPaymentStatus),
		FirstTime:       c(colStudentFirstTime),
	}
}

func encodeStudent(s student.Student) []string {
	row := make([]string, studentColumns)
	row[colStudentID] = s.ID
	row[colStudentName] = s.Name
	row[colStudentLevel] = s.Level
	row[colStudentSubjects] = s.Subjects
	row[colStudentGuardian] = s.Guardian
	row[colStudentGuardianContact] = s.GuardianContact
	row[colStudentAddress] = s.Address
	row[colStudentTransport] = s.Transport
	row[colStudentTransportArea] = s.TransportArea
	row[colStudentPaymentStatus] = s.PaymentStatus
	row[colStudentFirstTime] = s.FirstTime
	return row
}

func notFound(err error, sentinel error) error {
	if errors.Cause(err) == spreadsheet.ErrRowNotFound {
		return sentinel
	}
	return err
}

// updateKeepingTail overwrites the record keyed id with row, keeping any stored cells beyond row.
func updateKeepingTail(ctx context.Context, store *spreadsheet.Store, sheet, id string, row []string) error {
	return store.Mutate(ctx, sheet, func(tx *spreadsheet.Tx) error {
		rowNum, err := tx.FindRowIndex(keyColumn, id)
		if err != nil {
			return err
		}
		stored, err := tx.Row(rowNum)
		if err != nil {
			return err
		}
		if len(stored) > len(row) {
			row = append(row, stored[len(row):]...)
		}
		return tx.UpdateAt(rowNum, row)
	})
}

func (repo studentRepository) QueryAll(ctx context.Context) ([]student.Student, error) {
	rows, err := repo.store.Fetch(ctx, StudentsSheet)
	if err != nil {
		return nil, err
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, decodeStudent(row))
	}
	return students, nil
}

func (repo studentRepository) Create(ctx context.Context, s student.Student) (student.Student, error) {
	if err := repo.store.Append(ctx, StudentsSheet, encodeStudent(s)); err != nil {
		return student.Student{}, err
	}
	return s, nil
}

func (repo studentRepository) Update(ctx context.Context, s student.Student) (student.Student, error) {
	if err := updateKeepingTail(ctx, repo.store, StudentsSheet, s.ID, encodeStudent(s)); err != nil {
		return student.Student{}, notFound(err, student.ErrNotFound)
	}
	return s, nil
}

// UpdatePaymentStatus rewrites the stored row with only its status column changed.
func (repo studentRepository) UpdatePaymentStatus(ctx context.Context, id, status string) (student.Student, error) {
	var updated student.Student
	err := repo.store.Mutate(ctx, StudentsSheet, func(tx *spreadsheet.Tx) error {
		rowNum, err := tx.FindRowIndex(keyColumn, id)
		if err != nil {
			return err
		}
		row, err := tx.Row(rowNum)
		if err != nil {
			return err
		}
		row = spreadsheet.Pad(row, studentColumns)
		row[colStudentPaymentStatus] = status
		if err = tx.UpdateAt(rowNum, row); err != nil {
			return err
		}
		updated = decodeStudent(row)
		return nil
	})
	if err != nil {
		return student.Student{}, notFound(err, student.ErrNotFound)
	}
	return updated, nil
}

func (repo studentRepository) Delete(ctx context.Context, id string) error {
	return notFound(repo.store.Delete(ctx, StudentsSheet, keyColumn, id), student.ErrNotFound)
}
