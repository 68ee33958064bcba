package sheetrepos

import (
	"context"

	"github.com/trezcool/tuition/core/teacher"
	"github.com/trezcool/tuition/storage/spreadsheet"
)

// Teachers sheet columns
const (
	colTeacherID = iota
	colTeacherName
	colTeacherSubject
	colTeacherContact
	teacherColumns
)

type teacherRepository struct {
	store *spreadsheet.Store
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(store *spreadsheet.Store) *teacherRepository {
	return &teacherRepository{store: store}
}

func decodeTeacher(row []string) teacher.Teacher {
	return teacher.Teacher{
		ID:      spreadsheet.Cell(row, colTeacherID),
		Name:    spreadsheet.Cell(row, colTeacherName),
		Subject: spreadsheet.Cell(row, colTeacherSubject),
		Contact: spreadsheet.Cell(row, colTeacherContact),
	}
}

func encodeTeacher(t teacher.Teacher) []string {
	row := make([]string, teacherColumns)
	row[colTeacherID] = t.ID
	row[colTeacherName] = t.Name
	row[colTeacherSubject] = t.Subject
	row[colTeacherContact] = t.Contact
	return row
}

func (repo teacherRepository) QueryAll(ctx context.Context) ([]teacher.Teacher, error) {
	rows, err := repo.store.Fetch(ctx, TeachersSheet)
	if err != nil {
		return nil, err
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, decodeTeacher(row))
	}
	return teachers, nil
}

func (repo teacherRepository) Create(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	if err := repo.store.Append(ctx, TeachersSheet, encodeTeacher(t)); err != nil {
		return teacher.Teacher{}, err
	}
	return t, nil
}

func (repo teacherRepository) Update(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	if err := updateKeepingTail(ctx, repo.store, TeachersSheet, t.ID, encodeTeacher(t)); err != nil {
		return teacher.Teacher{}, notFound(err, teacher.ErrNotFound)
	}
	return t, nil
}

func (repo teacherRepository) Delete(ctx context.Context, id string) error {
	return notFound(repo.store.Delete(ctx, TeachersSheet, keyColumn, id), teacher.ErrNotFound)
}
