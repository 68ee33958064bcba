package sheetrepos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/storage/spreadsheet"
	sheetrepos "github.com/trezcool/tuition/storage/spreadsheet/repos"
	"github.com/trezcool/tuition/testutil"
)

func TestStudentRepository(t *testing.T) {
	ctx := context.Background()
	store, backend := testutil.NewStore(t, testutil.NewLogger())
	repo := sheetrepos.NewStudentRepository(store)

	ali := testutil.CreateStudent(t, repo, testutil.NewStudent("Ali", "Mr Lee"))
	mei := testutil.CreateStudent(t, repo, testutil.NewStudent("Mei", "Mr Lee", func(s *student.Student) {
		s.Level = student.LevelSecondary1
		s.Transport = "No"
		s.TransportArea = student.AreaNone
	}))

	t.Run("query all", func(t *testing.T) {
		students, err := repo.QueryAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []student.Student{ali, mei}, students)
	})

	t.Run("status only update", func(t *testing.T) {
		updated, err := repo.UpdatePaymentStatus(ctx, ali.ID, student.StatusOverdue)
		require.NoError(t, err)

		want := ali
		want.PaymentStatus = student.StatusOverdue
		assert.Equal(t, want, updated)

		students, err := repo.QueryAll(ctx)
		require.NoError(t, err)
		var matches []student.Student
		for _, s := range students {
			if s.ID == ali.ID {
				matches = append(matches, s)
			}
		}
		assert.Equal(t, []student.Student{want}, matches)
	})

	t.Run("status only update keeps unknown columns", func(t *testing.T) {
		grid, err := backend.Values(ctx, sheetrepos.StudentsSheet)
		require.NoError(t, err)
		row := append(spreadsheet.CopyGrid(grid)[2], "extra")
		require.NoError(t, store.UpdateAt(ctx, sheetrepos.StudentsSheet, 3, row))

		_, err = repo.UpdatePaymentStatus(ctx, mei.ID, student.StatusPaid)
		require.NoError(t, err)
		grid, _ = backend.Values(ctx, sheetrepos.StudentsSheet)
		assert.Equal(t, "extra", grid[2][len(grid[2])-1])
		assert.Equal(t, student.StatusPaid, grid[2][9])
	})

	t.Run("full update", func(t *testing.T) {
		edited := mei
		edited.Name = "Mei Ling"
		_, err := repo.Update(ctx, edited)
		require.NoError(t, err)
		students, _ := repo.QueryAll(ctx)
		require.Len(t, students, 2)
		assert.Equal(t, "Mei Ling", students[1].Name)

		grid, err := backend.Values(ctx, sheetrepos.StudentsSheet)
		require.NoError(t, err)
		assert.Equal(t, "Mei Ling", grid[2][1])
		assert.Equal(t, "extra", grid[2][len(grid[2])-1])
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, ali.ID))

		students, _ := repo.QueryAll(ctx)
		require.Len(t, students, 1)
		assert.Equal(t, mei.ID, students[0].ID)

		idx, err := store.FindRowIndex(ctx, sheetrepos.StudentsSheet, "id", ali.ID)
		require.NoError(t, err)
		assert.Equal(t, spreadsheet.NotFound, idx)

		assert.Equal(t, student.ErrNotFound, repo.Delete(ctx, ali.ID))
		_, err = repo.UpdatePaymentStatus(ctx, ali.ID, student.StatusPaid)
		assert.Equal(t, student.ErrNotFound, err)
		_, err = repo.Update(ctx, ali)
		assert.Equal(t, student.ErrNotFound, err)
	})
}

func TestStudentRepository_shortRows(t *testing.T) {
	ctx := context.Background()
	store, backend := testutil.NewStore(t, testutil.NewLogger())
	backend.Load(sheetrepos.StudentsSheet, [][]string{
		sheetrepos.StudentsSchema.Header,
		{"STU-1", "Ali", "Primary 4"},
	})
	repo := sheetrepos.NewStudentRepository(store)

	students, err := repo.QueryAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []student.Student{{ID: "STU-1", Name: "Ali", Level: "Primary 4"}}, students)

	updated, err := repo.UpdatePaymentStatus(ctx, "STU-1", student.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, student.Student{ID: "STU-1", Name: "Ali", Level: "Primary 4", PaymentStatus: student.StatusPaid}, updated)
}
