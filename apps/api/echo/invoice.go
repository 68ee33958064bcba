package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/invoice"
)

const mimePDF = "application/pdf"

type invoiceApi struct {
	svc      *invoice.Service
	renderer core.PDFRenderer
	validate *validator.Validate
}

type renderRequest struct {
	HTMLContent string `json:"htmlContent"`
}

func registerInvoiceAPI(g *echo.Group, svc *invoice.Service, renderer core.PDFRenderer, validate *validator.Validate) {
	api := invoiceApi{svc: svc, renderer: renderer, validate: validate}

	ig := g.Group("/invoices")
	ig.GET("/levels", api.levels)
	ig.POST("/guardian", api.guardian)
	ig.POST("/guardian/pdf", api.guardianPDF)
	ig.POST("/guardian/email", api.guardianEmail)

	g.POST("/render/pdf", api.renderPDF)
}

func attachment(ctx echo.Context, filename string, pdf []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, mimePDF, pdf)
}

func (api *invoiceApi) levels(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.LevelSummary(ctx.Request().Context()))
}

func (api *invoiceApi) bindGuardian(ctx echo.Context) (invoice.GuardianRequest, error) {
	var data invoice.GuardianRequest
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to GuardianRequest")
	}
	return data, data.Validate(api.validate)
}

func (api *invoiceApi) guardian(ctx echo.Context) error {
	data, err := api.bindGuardian(ctx)
	if err != nil {
		return err
	}
	inv, err := api.svc.ForGuardian(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *invoiceApi) guardianPDF(ctx echo.Context) error {
	data, err := api.bindGuardian(ctx)
	if err != nil {
		return err
	}
	inv, pdf, err := api.svc.PDFForGuardian(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return attachment(ctx, invoice.Filename(inv), pdf)
}

func (api *invoiceApi) guardianEmail(ctx echo.Context) error {
	var data invoice.EmailRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmailRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inv, err := api.svc.EmailToGuardian(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusAccepted, SuccessResponse{
		Success: fmt.Sprintf("Invoice %s is on its way to %s.", inv.Number, data.Email),
	})
}

// renderPDF turns a complete HTML document posted by the client into a PDF.
func (api *invoiceApi) renderPDF(ctx echo.Context) error {
	var data renderRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to renderRequest")
	}
	if data.HTMLContent == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing htmlContent")
	}

	pdf, err := api.renderer.Render(ctx.Request().Context(), data.HTMLContent)
	if err != nil {
		return err
	}
	return attachment(ctx, "invoice.pdf", pdf)
}
