package handlers

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/chiefduck/ratewatch/internal/auth"
	"github.com/chiefduck/ratewatch/internal/calls"
	"github.com/chiefduck/ratewatch/internal/proxy"
)

// CallStopper ends a call; *calls.Service implements it.
type CallStopper interface {
	Stop(ctx context.Context, callID string) (calls.Result, error)
}

// TokenAuthenticator checks an Authorization header; *auth.Resolver implements it.
type TokenAuthenticator interface {
	Authenticate(header string) (string, error)
}

// StopCallHandler serves /functions/stop-call.
type StopCallHandler struct {
	calls  CallStopper
	auth   TokenAuthenticator
	logger *slog.Logger
}

type StopCallRequest struct {
	CallID string `json:"callId"`
}

func NewStopCallHandler(log *slog.Logger, stopper CallStopper, authenticator TokenAuthenticator) *StopCallHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StopCallHandler{
		calls:  stopper,
		auth:   authenticator,
		logger: log.With(slog.String("handler", "stop_call")),
	}
}

func (h *StopCallHandler) Register(e *echo.Echo) {
	e.Any("/functions/stop-call", proxy.Handle(h.logger, "stop-call", h.StopCall))
}

// StopCall ends the call named in the body. A call the platform already
// forgot is reported as success.
func (h *StopCallHandler) StopCall(c echo.Context) (proxy.Envelope, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return proxy.Envelope{}, proxy.Auth("Missing authorization header", nil)
	}
	if h.auth == nil {
		return proxy.Envelope{}, proxy.NotConfigured("Authentication")
	}
	userID, err := h.auth.Authenticate(header)
	if err != nil {
		return proxy.Envelope{}, proxy.Auth("Unauthorized", err)
	}

	var req StopCallRequest
	if err := proxy.Bind(c, &req); err != nil {
		return proxy.Envelope{}, err
	}
	if req.CallID == "" {
		return proxy.Envelope{}, proxy.Validation("callId is required")
	}
	if h.calls == nil {
		return proxy.Envelope{}, proxy.NotConfigured("Bland API key")
	}

	res, err := h.calls.Stop(c.Request().Context(), req.CallID)
	if err != nil {
		return proxy.Envelope{}, err
	}
	h.logger.Info("stop call handled",
		slog.String("user_id", userID),
		slog.String("call_id", req.CallID),
		slog.Bool("already_ended", res.AlreadyEnded),
		slog.Bool("call_log_updated", res.Updated),
	)
	return proxy.Envelope{Message: res.Message}, nil
}

var _ TokenAuthenticator = (*auth.Resolver)(nil)
