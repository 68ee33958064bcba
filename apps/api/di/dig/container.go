package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/tuition/apps/api/echo"
	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/core/invoice"
	"github.com/trezcool/tuition/core/pricing"
	"github.com/trezcool/tuition/core/student"
	"github.com/trezcool/tuition/core/teacher"
	emailsvc "github.com/trezcool/tuition/services/email"
	logsvc "github.com/trezcool/tuition/services/logger"
	pdfsvc "github.com/trezcool/tuition/services/pdf"
	"github.com/trezcool/tuition/services/suggest"
	"github.com/trezcool/tuition/storage"
)

type StoreLoggerParam struct {
	dig.In
	Logger core.Logger `name:"storeLogger"`
}

type RepositoriesResult struct {
	dig.Out
	Repos    *storage.Repositories
	Students student.Repository
	Teachers teacher.Repository
	Prices   pricing.Repository
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStoreLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newRepositories(conf *core.Config, loggerParam StoreLoggerParam) RepositoriesResult {
	setUp := func() (*storage.Repositories, error) {
		ctx := context.Background()
		repos, err := storage.Open(ctx, conf, loggerParam.Logger)
		if err != nil {
			return nil, err
		}
		if err = repos.Init(ctx); err != nil {
			_ = repos.Close()
			return nil, err
		}
		return repos, nil
	}

	repos, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Store.Driver, err), err)
	}
	return RepositoriesResult{
		Repos:    repos,
		Students: repos.Students,
		Teachers: repos.Teachers,
		Prices:   repos.Prices,
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

var newGeminiFunc = suggest.NewGeminiSuggester // mockable

// newSuggester falls back to canned suggestions when Gemini is not configured or its client cannot be built.
func newSuggester(conf *core.Config, logger core.Logger) core.Suggester {
	if conf.Gemini.APIKey == "" {
		return suggest.CannedSuggester{}
	}
	s, err := newGeminiFunc(context.Background(), conf, logger)
	if err != nil {
		logger.Warn(fmt.Sprintf("gemini unavailable, using canned suggestions: %v", err))
		return suggest.CannedSuggester{}
	}
	return s
}

// CloseSuggester releases the suggester's client, if it holds one.
func CloseSuggester(s core.Suggester) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	studentSvc *student.Service,
	teacherSvc *teacher.Service,
	priceSvc *pricing.Service,
	invoiceSvc *invoice.Service,
	renderer core.PDFRenderer,
	suggester core.Suggester,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		StudentSvc: studentSvc,
		TeacherSvc: teacherSvc,
		PriceSvc:   priceSvc,
		InvoiceSvc: invoiceSvc,
		Renderer:   renderer,
		Suggester:  suggester,
		Validate:   validate,
		Translator: translator,
	})
}

type NewConfigFunc func() *core.Config

// New returns a new dependency injection dig.Container
func New(newConfig ...NewConfigFunc) *dig.Container {
	c := dig.New()

	confFunc := core.NewConfig
	if len(newConfig) > 0 {
		confFunc = newConfig[0]
	}

	must(c.Provide(confFunc))
	must(c.Provide(newLogger))
	must(c.Provide(newStoreLogger, dig.Name("storeLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(pdfsvc.NewChromeRenderer, dig.As(new(core.PDFRenderer))))
	must(c.Provide(newSuggester))
	must(c.Provide(student.NewService))
	must(c.Provide(teacher.NewService))
	must(c.Provide(pricing.NewService))
	must(c.Provide(invoice.NewService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
