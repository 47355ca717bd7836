package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/chiefduck/ratewatch/internal/auth"
	"github.com/chiefduck/ratewatch/internal/billing"
	"github.com/chiefduck/ratewatch/internal/proxy"
	"github.com/chiefduck/ratewatch/internal/users"
)

// UserResolver maps an Authorization header to a user; *auth.Resolver implements it.
type UserResolver interface {
	Resolve(ctx context.Context, header string) (users.User, error)
}

// PortalLinker opens a billing portal session; *billing.Service implements it.
type PortalLinker interface {
	PortalURL(ctx context.Context, userID, returnURL string) (string, error)
}

// StripePortalHandler serves /functions/stripe-portal.
type StripePortalHandler struct {
	users   UserResolver
	billing PortalLinker
	logger  *slog.Logger
}

type StripePortalRequest struct {
	ReturnURL string `json:"return_url"`
}

func NewStripePortalHandler(log *slog.Logger, resolver UserResolver, linker PortalLinker) *StripePortalHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StripePortalHandler{
		users:   resolver,
		billing: linker,
		logger:  log.With(slog.String("handler", "stripe_portal")),
	}
}

func (h *StripePortalHandler) Register(e *echo.Echo) {
	e.Any("/functions/stripe-portal", proxy.Handle(h.logger, "stripe-portal", h.CreatePortalSession))
}

// CreatePortalSession returns {"url": ...} for the caller's billing customer.
func (h *StripePortalHandler) CreatePortalSession(c echo.Context) (proxy.Envelope, error) {
	if h.users == nil {
		return proxy.Envelope{}, proxy.NotConfigured("Authentication")
	}
	ctx := c.Request().Context()
	user, err := h.users.Resolve(ctx, c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUserNotFound):
			return proxy.Envelope{}, proxy.NotFound("User not found", err)
		case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
			return proxy.Envelope{}, proxy.Auth("Unauthorized", err)
		default:
			return proxy.Envelope{}, err
		}
	}

	var req StripePortalRequest
	if err := proxy.Bind(c, &req); err != nil {
		return proxy.Envelope{}, err
	}
	if h.billing == nil {
		return proxy.Envelope{}, proxy.NotConfigured("Stripe secret key")
	}

	url, err := h.billing.PortalURL(ctx, user.ID, req.ReturnURL)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrCustomerNotFound):
			return proxy.Envelope{}, proxy.NotFound("Customer not found", err)
		case errors.Is(err, billing.ErrInvalidReturnURL):
			return proxy.Envelope{}, proxy.Validation(err.Error())
		default:
			return proxy.Envelope{}, err
		}
	}
	return proxy.Envelope{URL: url}, nil
}
