package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/invoice"
	"github.com/trezcool/tuition/core/pricing"
	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/core/teacher"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		StudentSvc *student.Service
		TeacherSvc *teacher.Service
		PriceSvc   *pricing.Service
		InvoiceSvc *invoice.Service
		Renderer   core.PDFRenderer
		Suggester  core.Suggester
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		conf     *core.Config
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		conf:     deps.Conf,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup(deps)
	return s
}

func (s *Server) setup(deps ServerDeps) {
	s.app.HideBanner = true
	s.app.Debug = deps.Conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !deps.Conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(deps.Conf.Debug || deps.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	registerStudentAPI(v1, deps.StudentSvc, deps.PriceSvc, deps.Validate)
	registerTeacherAPI(v1, deps.TeacherSvc, deps.Validate)
	registerPriceAPI(v1, deps.PriceSvc)
	registerInvoiceAPI(v1, deps.InvoiceSvc, deps.Renderer, deps.Validate)
	registerDashboardAPI(v1, deps.StudentSvc, deps.InvoiceSvc, deps.Suggester)
}

// Start listens until the server is shut down. Listening errors are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
