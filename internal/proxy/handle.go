package proxy

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CORSHeaders are written on every response, including errors and preflight.
var CORSHeaders = map[string]string{
	echo.HeaderAccessControlAllowOrigin:  "*",
	echo.HeaderAccessControlAllowHeaders: "authorization, x-client-info, apikey, content-type",
	echo.HeaderAccessControlAllowMethods: "POST, OPTIONS",
}

// Func performs one proxy action. It returns the success envelope or an error
// that Handle classifies.
type Func func(c echo.Context) (Envelope, error)

// Handle adapts fn into an echo handler. Preflight returns before fn runs.
func Handle(log *slog.Logger, name string, fn Func) echo.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("function", name))
	return func(c echo.Context) error {
		header := c.Response().Header()
		for k, v := range CORSHeaders {
			header.Set(k, v)
		}

		method := c.Request().Method
		if method == http.MethodOptions {
			return c.NoContent(http.StatusNoContent)
		}
		if method != http.MethodPost {
			return respondError(c, log, MethodNotAllowed())
		}

		env, err := fn(c)
		if err != nil {
			return respondError(c, log, err)
		}
		env.Success = true
		env.Error = ""
		return c.JSON(http.StatusOK, env)
	}
}

func respondError(c echo.Context, log *slog.Logger, err error) error {
	status, msg := Classify(err)
	attrs := []any{slog.Int("status", status), slog.String("kind", KindOf(err).String()), slog.Any("error", err)}
	var perr *Error
	if errors.As(err, &perr) && perr.Kind == KindUpstream {
		attrs = append(attrs, slog.Int("upstream_status", perr.UpstreamStatus))
	}
	if status >= http.StatusInternalServerError {
		log.Error("function failed", attrs...)
	} else {
		log.Warn("function rejected request", attrs...)
	}
	return c.JSON(status, Envelope{Success: false, Error: msg})
}

// Bind decodes the JSON body into v whatever the Content-Type says.
// An empty body leaves v untouched.
func Bind(c echo.Context, v any) error {
	if c.Request().ContentLength == 0 {
		return nil
	}
	if err := c.Echo().JSONSerializer.Deserialize(c, v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return Validation("invalid JSON body")
	}
	return nil
}
