package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tuition/core/teacher"
)

type teacherRow struct {
	ID      string      `db:"id"`
	Name    string      `db:"name"`
	Subject string      `db:"subject"`
	Contact null.String `db:"contact"`
}

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo teacherRepository) QueryAll(ctx context.Context) ([]teacher.Teacher, error) {
	var rows []teacherRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT id, name, subject, contact FROM teachers ORDER BY seq"); err != nil {
		return nil, errors.Wrap(err, "selecting teachers")
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, r := range rows {
		teachers = append(teachers, teacher.Teacher{ID: r.ID, Name: r.Name, Subject: r.Subject, Contact: r.Contact.String})
	}
	return teachers, nil
}

func toTeacherRow(t teacher.Teacher) teacherRow {
	return teacherRow{ID: t.ID, Name: t.Name, Subject: t.Subject, Contact: null.NewString(t.Contact, t.Contact != "")}
}

func (repo teacherRepository) Create(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	q := "INSERT INTO teachers (id, name, subject, contact) VALUES (:id, :name, :subject, :contact)"
	if _, err := repo.db.NamedExecContext(ctx, q, toTeacherRow(t)); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo teacherRepository) Update(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	q := "UPDATE teachers SET name = :name, subject = :subject, contact = :contact WHERE id = :id"
	res, err := repo.db.NamedExecContext(ctx, q, toTeacherRow(t))
	if err := affected(res, err, teacher.ErrNotFound); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	return t, nil
}

func (repo teacherRepository) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM teachers WHERE id = $1", id)
	return errors.Wrap(affected(res, err, teacher.ErrNotFound), "deleting teacher")
}
