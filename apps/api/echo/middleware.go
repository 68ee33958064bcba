package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core/student"
)

const ctxStudentKey = "student"

var errStudentNotInCtx = errors.New("student not found in echo.Context")

// studentMiddleware loads the student named by the `:id` path param into the context.
func studentMiddleware(svc *student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			s, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return err
			}
			ctx.Set(ctxStudentKey, s)
			return next(ctx)
		}
	}
}

func getContextStudent(ctx echo.Context) (student.Student, error) {
	s, ok := ctx.Get(ctxStudentKey).(student.Student)
	if !ok {
		return student.Student{}, errStudentNotInCtx
	}
	return s, nil
}
