// Package sqlxrepos implements the record repositories over Postgres.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tuition/core/student"
)

const studentColumns = `id, name, level, subjects, guardian, guardian_contact, address,
	transport, transport_area, payment_status, first_time`

type studentRow struct {
	ID              string      `db:"id"`
	Name            string      `db:"name"`
	Level           string      `db:"level"`
	Subjects        string      `db:"subjects"`
	Guardian        string      `db:"guardian"`
	GuardianContact null.String `db:"guardian_contact"`
	Address         null.String `db:"address"`
	Transport       string      `db:"transport"`
	TransportArea   null.String `db:"transport_area"`
	PaymentStatus   string      `db:"payment_status"`
	FirstTime       null.String `db:"first_time"`
}

func toStudentRow(s student.Student) studentRow {
	return studentRow{
		ID:              s.ID,
		Name:            s.Name,
		Level:           s.Level,
		Subjects:        s.Subjects,
		Guardian:        s.Guardian,
		GuardianContact: null.NewString(s.GuardianContact, s.GuardianContact != ""),
		Address:         null.NewString(s.Address, s.Address != ""),
		Transport:       s.Transport,
		TransportArea:   null.NewString(s.TransportArea, s.TransportArea != ""),
		PaymentStatus:   s.PaymentStatus,
		FirstTime:       null.NewString(s.FirstTime, s.FirstTime != ""),
	}
}

func (r studentRow) student() student.Student {
	return student.Student{
		ID:              r.ID,
		Name:            r.Name,
		Level:           r.Level,
		Subjects:        r.Subjects,
		Guardian:        r.Guardian,
		GuardianContact: r.GuardianContact.String,
		Address:         r.Address.String,
		Transport:       r.Transport,
		TransportArea:   r.TransportArea.String,
		PaymentStatus:   r.PaymentStatus,
		FirstTime:       r.FirstTime.String,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) QueryAll(ctx context.Context) ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT "+studentColumns+" FROM students ORDER BY seq"); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students, nil
}

func (repo studentRepository) Create(ctx context.Context, s student.Student) (student.Student, error) {
	q := `INSERT INTO students (` + studentColumns + `)
		VALUES (:id, :name, :level, :subjects, :guardian, :guardian_contact, :address,
			:transport, :transport_area, :payment_status, :first_time)`
	if _, err := repo.db.NamedExecContext(ctx, q, toStudentRow(s)); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo studentRepository) Update(ctx context.Context, s student.Student) (student.Student, error) {
	q := `UPDATE students SET name = :name, level = :level, subjects = :subjects, guardian = :guardian,
			guardian_contact = :guardian_contact, address = :address, transport = :transport,
			transport_area = :transport_area, payment_status = :payment_status, first_time = :first_time
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toStudentRow(s))
	if err := affected(res, err, student.ErrNotFound); err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return s, nil
}

func (repo studentRepository) UpdatePaymentStatus(ctx context.Context, id, status string) (student.Student, error) {
	var r studentRow
	q := "UPDATE students SET payment_status = $1 WHERE id = $2 RETURNING " + studentColumns
	if err := repo.db.GetContext(ctx, &r, q, status, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "updating student status")
	}
	return r.student(), nil
}

func (repo studentRepository) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	return errors.Wrap(affected(res, err, student.ErrNotFound), "deleting student")
}

// affected turns an exec that touched no row into notFound.
func affected(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
