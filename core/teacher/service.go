package teacher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/tuition/core"
)

var (
	// errors
	ErrNotFound = errors.New("teacher not found")

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		QueryAll(ctx context.Context) ([]Teacher, error)
		Create(ctx context.Context, t Teacher) (Teacher, error)
		Update(ctx context.Context, t Teacher) (Teacher, error)
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

func NewID() string {
	return idPrefix + strconv.FormatInt(nowFunc().UnixMilli(), 10)
}

// QueryAll never fails: a failed read is logged and degrades to an empty list.
func (svc *Service) QueryAll(ctx context.Context) []Teacher {
	teachers, err := svc.repo.QueryAll(ctx)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("fetching teachers: %v", err), err)
		return []Teacher{}
	}
	if teachers == nil {
		teachers = []Teacher{}
	}
	return teachers
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, orderings []core.Ordering) []Teacher {
	if filter != nil {
		filter.Clean()
	}
	all := svc.QueryAll(ctx)
	teachers := all
	if filter != nil && (filter.Search != "" || filter.Subject != "") {
		teachers = make([]Teacher, 0, len(all))
		for _, t := range all {
			if filter.Subject != "" && t.Subject != filter.Subject {
				continue
			}
			if filter.Search != "" &&
				!strings.Contains(strings.ToLower(t.Name), filter.Search) &&
				!strings.Contains(strings.ToLower(t.ID), filter.Search) {
				continue
			}
			teachers = append(teachers, t)
		}
	}
	core.SortBy(teachers, orderings, orderingField)
	return teachers
}

func (svc *Service) GetByID(ctx context.Context, id string) (Teacher, error) {
	teachers, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return Teacher{}, err
	}
	for _, t := range teachers {
		if t.ID == id {
			return t, nil
		}
	}
	return Teacher{}, ErrNotFound
}

func (svc *Service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	return svc.repo.Create(ctx, Teacher{
		ID:      NewID(),
		Name:    nt.Name,
		Subject: nt.Subject,
		Contact: nt.Contact,
	})
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error) {
	return svc.repo.Update(ctx, Teacher{
		ID:      id,
		Name:    ut.Name,
		Subject: ut.Subject,
		Contact: ut.Contact,
	})
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.Delete(ctx, id)
}
