package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core/pricing"
	"github.com/trezcool/tuition/core/student"
)

type studentApi struct {
	svc      *student.Service
	prices   *pricing.Service
	validate *validator.Validate
}

type feeResponse struct {
	StudentID    string  `json:"studentId"`
	Subjects     int     `json:"subjects"`
	Tuition      float64 `json:"tuition"`
	Transport    float64 `json:"transport"`
	Total        float64 `json:"total"`
	PriceVersion string  `json:"priceVersion"`
}

func registerStudentAPI(g *echo.Group, svc *student.Service, prices *pricing.Service, validate *validator.Validate) {
	api := studentApi{svc: svc, prices: prices, validate: validate}

	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.POST("", api.create)

	// detail endpoints
	dg := sg.Group("/:id", studentMiddleware(svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.PATCH("/status", api.setStatus)
	dg.GET("/fee", api.fee)
}

func (api *studentApi) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &filter); err != nil {
		return errors.Wrap(err, "binding to student.QueryFilter")
	}
	var ord Ordering
	ord.Bind(ctx)

	return ctx.JSON(http.StatusOK, api.svc.Query(ctx.Request().Context(), &filter, ord.Orderings))
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	orig, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) setStatus(ctx echo.Context) error {
	orig, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	var data student.StatusUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.SetPaymentStatus(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating student status")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) fee(ctx echo.Context) error {
	s, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	table := api.prices.Table(ctx.Request().Context())
	fee := pricing.Resolve(s, table)
	return ctx.JSON(http.StatusOK, feeResponse{
		StudentID:    s.ID,
		Subjects:     fee.Subjects,
		Tuition:      fee.Tuition,
		Transport:    fee.Transport,
		Total:        fee.Total,
		PriceVersion: table.Version,
	})
}
