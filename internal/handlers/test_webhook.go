package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chiefduck/ratewatch/internal/proxy"
)

const maxWebhookBody = 1 << 20

// TestWebhookHandler serves /functions/test-webhook, a diagnostic echo.
type TestWebhookHandler struct {
	now    func() time.Time
	logger *slog.Logger
}

func NewTestWebhookHandler(log *slog.Logger) *TestWebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TestWebhookHandler{
		now:    time.Now,
		logger: log.With(slog.String("handler", "test_webhook")),
	}
}

func (h *TestWebhookHandler) Register(e *echo.Echo) {
	e.Any("/functions/test-webhook", proxy.Handle(h.logger, "test-webhook", h.Echo))
}

// Echo returns the request body verbatim under "received".
func (h *TestWebhookHandler) Echo(c echo.Context) (proxy.Envelope, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil {
		return proxy.Envelope{}, err
	}
	if len(body) > maxWebhookBody {
		return proxy.Envelope{}, proxy.Validation("request body too large")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return proxy.Envelope{}, proxy.Validation("request body is required")
	}
	if !json.Valid(body) {
		return proxy.Envelope{}, proxy.Validation("invalid JSON body")
	}
	h.logger.Info("test webhook received", slog.Int("bytes", len(body)), slog.String("body", string(body)))
	return proxy.Envelope{
		Received:  json.RawMessage(body),
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}, nil
}
