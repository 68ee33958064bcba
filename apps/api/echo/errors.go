package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/invoice"
	"github.com/trezcool/tuition/core/pricing"
	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/core/teacher"
	"github.com/trezcool/tuition/storage/spreadsheet"
)

const (
	msgSuggestionsUnavailable = "Smart suggestions are currently unavailable."
	msgStoreUnavailable       = "the spreadsheet service is unavailable, please retry later"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}
		var internal bool

		cause := errors.Cause(err)
		var gerr *googleapi.Error
		var renderErr *core.RenderError

		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch {
			case cause == student.ErrNotFound || cause == teacher.ErrNotFound ||
				cause == invoice.ErrNoStudents || cause == spreadsheet.ErrRowNotFound:
				code = http.StatusNotFound
				message = cause.Error()
			case cause == pricing.ErrVersionConflict:
				code = http.StatusConflict
				message = cause.Error()
			case cause == core.ErrSuggestionsUnavailable:
				code = http.StatusServiceUnavailable
				message = msgSuggestionsUnavailable
			case errors.As(err, &renderErr):
				logger.Error(renderErr.Error(), err, map[string]interface{}{"request_id": requestID(ctx)})
				code = http.StatusInternalServerError
				details := renderErr.Message
				if renderErr.Err != nil {
					details = renderErr.Err.Error()
				}
				message = echo.Map{"error": renderErr.Message, "details": details}
			case errors.As(err, &gerr):
				logger.Error(err.Error(), err, map[string]interface{}{"request_id": requestID(ctx)})
				code = http.StatusBadGateway
				message = msgStoreUnavailable
			default: // any other error is a server error
				internal = true
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{"request_id": requestID(ctx)})

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && internal {
			message = echo.Map{"error": err.Error()}
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func requestID(ctx echo.Context) string {
	return ctx.Response().Header().Get(echo.HeaderXRequestID)
}
