// Package testutil holds the fixtures shared by the tests of several packages.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/core/teacher"
	"github.com/trezcool/tuition/storage/spreadsheet"
	"github.com/trezcool/tuition/storage/spreadsheet/inmem"
	sheetrepos "github.com/trezcool/tuition/storage/spreadsheet/repos"
)

// Logger records what is logged, by level.
type Logger struct {
	mu       sync.Mutex
	Messages map[string][]string
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger {
	return &Logger{Messages: make(map[string][]string)}
}

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages[level] = append(l.Messages[level], msg)
}

// Count returns the number of messages logged at level.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Messages[level])
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log("debug", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log("info", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log("warn", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log("error", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log("fatal", msg) }

// NewStore returns a record store over an initialized in-memory workbook.
func NewStore(t *testing.T, logger core.Logger) (*spreadsheet.Store, *inmem.Backend) {
	backend := inmem.New()
	store := spreadsheet.NewStore(backend, logger, sheetrepos.Schemas()...)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	return store, backend
}

var seq int

// NewStudent returns a valid student; fields are overridden by edit.
func NewStudent(name, guardian string, edit ...func(s *student.Student)) student.Student {
	seq++
	s := student.Student{
		ID:              fmt.Sprintf("STU-%d", 1700000000000+seq),
		Name:            name,
		Level:           student.LevelPrimary4,
		Subjects:        "Math, Science, English",
		Guardian:        guardian,
		GuardianContact: "012-3456789",
		Address:         "12 Jalan Bunga, Taman Indah",
		Transport:       core.Yes,
		TransportArea:   student.AreaOutside,
		PaymentStatus:   student.StatusPending,
		FirstTime:       core.No,
	}
	for _, fn := range edit {
		fn(&s)
	}
	return s
}

func CreateStudent(t *testing.T, repo student.Repository, s student.Student) student.Student {
	s, err := repo.Create(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateTeacher(t *testing.T, repo teacher.Repository, name, subject string) teacher.Teacher {
	seq++
	tea, err := repo.Create(context.Background(), teacher.Teacher{
		ID:      fmt.Sprintf("TEA-%d", 1700000000000+seq),
		Name:    name,
		Subject: subject,
		Contact: "013-9876543",
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tea
}
