package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core/pricing"
)

type priceApi struct {
	svc *pricing.Service
}

func registerPriceAPI(g *echo.Group, svc *pricing.Service) {
	api := priceApi{svc: svc}

	g.GET("/prices", api.retrieve)
	g.PUT("/prices", api.update)
}

func (api *priceApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Table(ctx.Request().Context()))
}

// update replaces the whole table. `version` must be the one returned by GET; a stale one is a 409.
func (api *priceApi) update(ctx echo.Context) error {
	var data pricing.Table
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to pricing.Table")
	}

	t, err := api.svc.Update(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}
