// Package echoapi is the HTTP gateway of the dashboard, built on Echo.
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
	"golang.org/x/oauth2"

	"github.com/serafinsanchez/googleclassroom-portal/core"
	"github.com/serafinsanchez/googleclassroom-portal/core/account"
	"github.com/serafinsanchez/googleclassroom-portal/core/classroom"
	"github.com/serafinsanchez/googleclassroom-portal/core/drive"
	"github.com/serafinsanchez/googleclassroom-portal/core/writing"
)

type (
	// ClientFactory builds Google API clients acting on behalf of an account.
	ClientFactory interface {
		Classroom(ctx context.Context, acc account.Account) (classroom.Client, error)
		Drive(ctx context.Context, acc account.Account) (drive.Source, error)
	}

	// IdentityProvider runs the Google sign in flow.
	IdentityProvider interface {
		AuthCodeURL(state string) string
		Exchange(ctx context.Context, code string) (account.Profile, *oauth2.Token, error)
	}

	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		AccountSvc   *account.Service
		ClassroomSvc *classroom.Service
		DriveSvc     *drive.Service
		WritingSvc   *writing.Service

		Clients  ClientFactory
		Identity IdentityProvider
	}

	Server struct {
		*http.Server
		app      *echo.Echo
		deps     *Deps
		shutdown chan os.Signal
		errors   chan error
	}
)

func NewServer(deps *Deps) *Server {
	conf := deps.Conf
	s := &Server{
		Server: &http.Server{
			Addr:         conf.Server.Address,
			ReadTimeout:  conf.Server.ReadTimeout,
			WriteTimeout: conf.Server.WriteTimeout,
		},
		app:      echo.New(),
		deps:     deps,
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	s.Handler = s.app
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{conf.FrontendBaseURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))
	s.app.Use(requestTimeout(conf.Server.RequestTimeout))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))
	authed := []echo.MiddlewareFunc{jwt, accountMiddleware(s.deps.AccountSvc)}

	registerAuthAPI(s.app, api, jwt, s.deps)
	registerClassroomAPI(api, authed, s.deps)
	registerDriveAPI(api, authed, s.deps)
	registerWritingAPI(api, authed, s.deps)
}

// Start listens for requests until the server is shut down. Listening errors are sent to Errors.
func (s *Server) Start() {
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal receives the OS signals (and internal requests) asking the server to stop.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"message":     "Server is running",
		"auth_url":    "/auth/google",
		"status_url":  "/api/auth/status",
		"courses_url": "/api/courses",
	})
}
