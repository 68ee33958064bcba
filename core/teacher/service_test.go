package teacher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tuition/core"
)

type repoMock struct {
	teachers []Teacher
	err      error
}

func (r *repoMock) QueryAll(context.Context) ([]Teacher, error) {
	return append([]Teacher(nil), r.teachers...), r.err
}

func (r *repoMock) Create(_ context.Context, t Teacher) (Teacher, error) {
	r.teachers = append(r.teachers, t)
	return t, nil
}

func (r *repoMock) Update(_ context.Context, t Teacher) (Teacher, error) {
	for i := range r.teachers {
		if r.teachers[i].ID == t.ID {
			r.teachers[i] = t
			return t, nil
		}
	}
	return Teacher{}, ErrNotFound
}

func (r *repoMock) Delete(_ context.Context, id string) error {
	for i := range r.teachers {
		if r.teachers[i].ID == id {
			r.teachers = append(r.teachers[:i], r.teachers[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type loggerMock struct{ errors int }

func (l *loggerMock) Debug(string, ...interface{}) {}
func (l *loggerMock) Info(string, ...interface{})  {}
func (l *loggerMock) Warn(string, ...interface{})  {}
func (l *loggerMock) Error(string, ...interface{}) { l.errors++ }
func (l *loggerMock) Fatal(string, ...interface{}) {}

func TestNewTeacher_Validate(t *testing.T) {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	tests := []struct {
		name    string
		nt      NewTeacher
		wantErr bool
	}{
		{name: "valid", nt: NewTeacher{Name: "Mr Tan", Subject: "Math", Contact: "012-3456789"}},
		{name: "short name", nt: NewTeacher{Name: " T ", Subject: "Math", Contact: "012-3456789"}, wantErr: true},
		{name: "short subject", nt: NewTeacher{Name: "Mr Tan", Subject: "BM", Contact: "012-3456789"}, wantErr: true},
		{name: "short contact", nt: NewTeacher{Name: "Mr Tan", Subject: "Math", Contact: "012"}, wantErr: true},
		{name: "empty", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nt.Validate(validate)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService(t *testing.T) {
	nowFunc = func() time.Time { return time.UnixMilli(1700000000000) }
	defer func() { nowFunc = time.Now }()

	ctx := context.Background()
	svc := NewService(new(repoMock), new(loggerMock))

	created, err := svc.Create(ctx, NewTeacher{Name: "Mr Tan", Subject: "Math", Contact: "012-3456789"})
	require.NoError(t, err)
	assert.Equal(t, "TEA-1700000000000", created.ID)

	updated, err := svc.Update(ctx, created.ID, UpdateTeacher{Name: "Mr Tan", Subject: "Science", Contact: "012-3456789"})
	require.NoError(t, err)
	assert.Equal(t, "Science", updated.Subject)

	_, err = svc.Update(ctx, "TEA-0", UpdateTeacher{Name: "X"})
	assert.Equal(t, ErrNotFound, err)

	assert.Equal(t, []Teacher{updated}, svc.Query(ctx, &QueryFilter{Search: "tan"}, nil))
	assert.Empty(t, svc.Query(ctx, &QueryFilter{Subject: "Math"}, nil))
	assert.Equal(t, []Teacher{updated}, svc.Query(ctx, &QueryFilter{Search: " TAN "}, nil))
	assert.Equal(t, []Teacher{updated}, svc.Query(ctx, &QueryFilter{Subject: " Science "}, nil))

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.Equal(t, ErrNotFound, err)
}

func TestService_QueryAll_readFailure(t *testing.T) {
	logger := new(loggerMock)
	svc := NewService(&repoMock{err: errors.New("boom")}, logger)
	assert.Equal(t, []Teacher{}, svc.QueryAll(context.Background()))
	assert.Equal(t, 1, logger.errors)
}
