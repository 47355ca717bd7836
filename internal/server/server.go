// Package server provides the HTTP server and Echo setup for the dashboard API
// and the proxy functions.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/chiefduck/ratewatch/internal/auth"
	"github.com/chiefduck/ratewatch/internal/proxy"
)

const functionsPrefix = "/functions/"

// Server is the HTTP server (Echo) with JWT middleware and registered handlers.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *slog.Logger
}

// Handler registers routes on the Echo instance.
type Handler interface {
	Register(e *echo.Echo)
}

// Options configures NewServer.
type Options struct {
	Addr      string
	JWTSecret string
	// RateLimit is requests per second per client IP on /functions; 0 disables limiting.
	RateLimit    float64
	Burst        int
	ErrorHandler echo.HTTPErrorHandler
}

// NewServer builds the Echo server with recovery, request logging, JWT auth
// for the dashboard API, rate limiting for the proxy functions and the given
// handlers.
func NewServer(log *slog.Logger, opts Options, handlers ...Handler) *Server {
	if log == nil {
		log = slog.Default()
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = 10 * time.Second
	if opts.ErrorHandler != nil {
		e.HTTPErrorHandler = opts.ErrorHandler
	}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", c.RealIP()),
			)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      func(c echo.Context) bool { return !isAPIPath(c.Request().URL.Path) },
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	}))
	if opts.RateLimit > 0 {
		e.Use(functionsRateLimiter(opts.RateLimit, opts.Burst))
	}
	e.Use(auth.JWTMiddleware(opts.JWTSecret, skipAuth))

	for _, h := range handlers {
		if h != nil {
			h.Register(e)
		}
	}

	return &Server{
		echo:   e,
		addr:   opts.Addr,
		logger: log.With(slog.String("component", "server")),
	}
}

// skipAuth leaves the health endpoints and the proxy functions to their own
// authentication.
func skipAuth(c echo.Context) bool {
	path := c.Request().URL.Path
	if path == "/ping" || path == "/health" {
		return true
	}
	if strings.HasPrefix(path, functionsPrefix) {
		return true
	}
	return c.Request().Method == http.MethodOptions && isAPIPath(path)
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

func functionsRateLimiter(limit float64, burst int) echo.MiddlewareFunc {
	if burst <= 0 {
		burst = int(limit) + 1
	}
	deny := func(c echo.Context, status int, msg string) error {
		for k, v := range proxy.CORSHeaders {
			c.Response().Header().Set(k, v)
		}
		return c.JSON(status, proxy.Envelope{Success: false, Error: msg})
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		// Preflight is answered by proxy.Handle and never spends a token.
		Skipper: func(c echo.Context) bool {
			return c.Request().Method == http.MethodOptions ||
				!strings.HasPrefix(c.Request().URL.Path, functionsPrefix)
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return deny(c, http.StatusForbidden, "Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return deny(c, http.StatusTooManyRequests, "Too many requests")
		},
	})
}

// Echo exposes the router, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start starts the HTTP server (blocks until shutdown).
func (s *Server) Start() error {
	s.logger.Info("listening", slog.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

// Stop gracefully shuts down the server using the given context.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
