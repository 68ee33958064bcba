package student

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/trezcool/tuition/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		QueryAll(ctx context.Context) ([]Student, error)
		Create(ctx context.Context, s Student) (Student, error)
		// Update overwrites the whole record identified by s.ID.
		Update(ctx context.Context, s Student) (Student, error)
		// UpdatePaymentStatus changes only the payment status column, keeping every other field as stored.
		UpdatePaymentStatus(ctx context.Context, id, status string) (Student, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// NewID returns a best-effort unique id: the kind prefix followed by the current unix millis.
func NewID() string {
	return idPrefix + strconv.FormatInt(nowFunc().UnixMilli(), 10)
}

// QueryAll never fails: a failed read is logged and degrades to an empty list.
func (svc *Service) QueryAll(ctx context.Context) []Student {
	students, err := svc.repo.QueryAll(ctx)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("fetching students: %v", err), err)
		return []Student{}
	}
	if students == nil {
		students = []Student{}
	}
	return students
}

// Query cleans filter, then returns the matching students in the requested order.
func (svc *Service) Query(ctx context.Context, filter *QueryFilter, orderings []core.Ordering) []Student {
	if filter != nil {
		filter.Clean()
	}
	all := svc.QueryAll(ctx)
	students := all
	if filter != nil && !filter.IsEmpty() {
		students = make([]Student, 0, len(all))
		for _, s := range all {
			if filter.matches(s) {
				students = append(students, s)
			}
		}
	}
	core.SortBy(students, orderings, orderingField)
	return students
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	students, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return Student{}, err
	}
	for _, s := range students {
		if s.ID == id {
			return s, nil
		}
	}
	return Student{}, ErrNotFound
}

// Create registers a student; new students always start as Pending.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	s := Student{
		ID:              NewID(),
		Name:            ns.Name,
		Level:           ns.Level,
		Subjects:        ns.Subjects,
		Guardian:        ns.Guardian,
		GuardianContact: ns.GuardianContact,
		Address:         ns.Address,
		Transport:       ns.Transport,
		TransportArea:   ns.TransportArea,
		PaymentStatus:   StatusPending,
		FirstTime:       ns.FirstTime,
	}
	return svc.repo.Create(ctx, s)
}

func (svc *Service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	status := us.PaymentStatus
	if status == "" {
		status = orig.PaymentStatus
	}
	s := Student{
		ID:              orig.ID,
		Name:            us.Name,
		Level:           us.Level,
		Subjects:        us.Subjects,
		Guardian:        us.Guardian,
		GuardianContact: us.GuardianContact,
		Address:         us.Address,
		Transport:       us.Transport,
		TransportArea:   us.TransportArea,
		PaymentStatus:   status,
		FirstTime:       us.FirstTime,
	}
	return svc.repo.Update(ctx, s)
}

func (svc *Service) SetPaymentStatus(ctx context.Context, id string, su StatusUpdate) (Student, error) {
	return svc.repo.UpdatePaymentStatus(ctx, id, su.PaymentStatus)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.Delete(ctx, id)
}

// Guardians groups students by guardian name, in order of first appearance.
// The contact of a guardian is the one given at their first child's registration.
func (svc *Service) Guardians(ctx context.Context) []Guardian {
	return GroupByGuardian(svc.QueryAll(ctx))
}

func GroupByGuardian(students []Student) []Guardian {
	idx := make(map[string]int)
	guardians := make([]Guardian, 0)
	for _, s := range students {
		i, ok := idx[s.Guardian]
		if !ok {
			i = len(guardians)
			idx[s.Guardian] = i
			guardians = append(guardians, Guardian{Name: s.Guardian, Contact: s.GuardianContact})
		}
		guardians[i].Children = append(guardians[i].Children, s)
	}
	return guardians
}
