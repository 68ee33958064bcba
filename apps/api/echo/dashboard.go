package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/invoice"
	"github.com/trezcool/tuition/core/student"
)

const defaultRecentUsage = "The administrator reviews the student and teacher lists and prepares monthly invoices."

type dashboardApi struct {
	students  *student.Service
	invoices  *invoice.Service
	suggester core.Suggester
}

type (
	suggestRequest struct {
		RecentAppUsage string `json:"recentAppUsage"`
		DataPatterns   string `json:"dataPatterns"`
	}

	suggestResponse struct {
		SuggestedActions []string `json:"suggestedActions"`
	}
)

func registerDashboardAPI(g *echo.Group, students *student.Service, invoices *invoice.Service, suggester core.Suggester) {
	api := dashboardApi{students: students, invoices: invoices, suggester: suggester}

	g.GET("/overview", api.overview)
	g.GET("/guardians", api.guardians)
	g.POST("/suggestions", api.suggest)
}

func (api *dashboardApi) overview(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.invoices.Overview(ctx.Request().Context()))
}

func (api *dashboardApi) guardians(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.students.Guardians(ctx.Request().Context()))
}

// suggest derives the data patterns from the live overview when the client does not send them.
func (api *dashboardApi) suggest(ctx echo.Context) error {
	var data suggestRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to suggestRequest")
	}
	if data.RecentAppUsage == "" {
		data.RecentAppUsage = defaultRecentUsage
	}
	if data.DataPatterns == "" {
		data.DataPatterns = api.invoices.Overview(ctx.Request().Context()).Patterns()
	}

	suggestions, err := api.suggester.Suggest(ctx.Request().Context(), data.RecentAppUsage, data.DataPatterns)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, suggestResponse{SuggestedActions: suggestions})
}
