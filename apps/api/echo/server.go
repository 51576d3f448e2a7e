package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/somo/core"
	"github.com/trezcool/somo/core/store"
	"github.com/trezcool/somo/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		UserSvc        user.Service
		Stores         *store.Manager
		Summarizer     core.Summarizer // nil disables chapter summaries
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		SignalShutdown()
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwtConfig := newJWTConfig(conf)
	jwt := middleware.JWTWithConfig(jwtConfig)

	registerUserAPI(v1, jwt, s.deps)

	// study data endpoints require a verified email
	ag := v1.Group("", jwt, verifiedMiddleware())
	registerStudyAPI(ag, s.deps)
	registerTaskAPI(ag, s.deps)
	registerExamAPI(ag, s.deps)
	registerNoteAPI(ag, s.deps)
	registerSettingsAPI(ag, s.deps)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errs
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown triggers a graceful shutdown from within the app.
func (s *server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Somo API!")
}
