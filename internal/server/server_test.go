package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/chiefduck/ratewatch/internal/handlers"
	"github.com/chiefduck/ratewatch/internal/logger"
)

type routeHandler struct{}

func (routeHandler) Register(e *echo.Echo) {
	e.GET("/api/secret", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
}

func newTestServer(opts Options) *Server {
	opts.JWTSecret = "server-test-secret"
	opts.ErrorHandler = handlers.HTTPErrorHandler
	log := logger.Discard()
	return NewServer(log, opts,
		handlers.NewPingHandler(log),
		handlers.NewTestWebhookHandler(log),
		routeHandler{},
		nil,
	)
}

func serve(s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutesSkipJWT(t *testing.T) {
	s := newTestServer(Options{})

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/ping", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodHead, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodPost, "/functions/test-webhook", `{}`, nil).Code)
}

func TestAPIRequiresJWT(t *testing.T) {
	s := newTestServer(Options{})
	rec := serve(s, http.MethodGet, "/api/secret", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"invalid or missing token"}`, rec.Body.String())
}

func TestAPIPreflightAllowsCORS(t *testing.T) {
	s := newTestServer(Options{})
	rec := serve(s, http.MethodOptions, "/api/secret", "", map[string]string{
		echo.HeaderOrigin:                     "https://dashboard.example.com",
		echo.HeaderAccessControlRequestMethod: http.MethodGet,
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestFunctionsRateLimited(t *testing.T) {
	s := newTestServer(Options{RateLimit: 1, Burst: 1})

	first := serve(s, http.MethodPost, "/functions/test-webhook", `{}`, nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := serve(s, http.MethodPost, "/functions/test-webhook", `{}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"success":false,"error":"Too many requests"}`, second.Body.String())
	assert.Equal(t, "*", second.Header().Get(echo.HeaderAccessControlAllowOrigin))

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/ping", "", nil).Code, "only /functions is limited")
}

func TestFunctionsPreflightNotRateLimited(t *testing.T) {
	s := newTestServer(Options{RateLimit: 1, Burst: 1})

	for i := 0; i < 3; i++ {
		rec := serve(s, http.MethodOptions, "/functions/test-webhook", "", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code, "preflight %d", i)
		assert.Zero(t, rec.Body.Len())
	}

	post := serve(s, http.MethodPost, "/functions/test-webhook", `{}`, nil)
	assert.Equal(t, http.StatusOK, post.Code, "preflights leave the token for the real request")

	assert.Equal(t, http.StatusTooManyRequests, serve(s, http.MethodPost, "/functions/test-webhook", `{}`, nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(s, http.MethodOptions, "/functions/test-webhook", "", nil).Code)
}
