package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/billingportal/session"

	"github.com/chiefduck/ratewatch/internal/proxy"
)

// StripePortal creates customer billing-portal sessions.
type StripePortal struct {
	sessions session.Client
	logger   *slog.Logger
}

// NewStripePortal builds a portal client. baseURL is empty for the live API.
func NewStripePortal(log *slog.Logger, secretKey, baseURL string, timeout time.Duration) (*StripePortal, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, fmt.Errorf("stripe portal: secret key is required")
	}
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if strings.TrimSpace(baseURL) != "" {
		cfg.URL = stripe.String(baseURL)
	}
	return &StripePortal{
		sessions: session.Client{B: stripe.GetBackendWithConfig(stripe.APIBackend, cfg), Key: secretKey},
		logger:   log.With(slog.String("client", "stripe")),
	}, nil
}

// CreateSession returns the hosted portal URL for customerID.
func (p *StripePortal) CreateSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := p.sessions.New(params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) {
			p.logger.Warn("portal session rejected",
				slog.Int("status", serr.HTTPStatusCode),
				slog.String("type", string(serr.Type)),
				slog.String("request_id", serr.RequestID),
			)
			return "", proxy.Upstream("Stripe", serr.HTTPStatusCode, serr.Msg)
		}
		return "", fmt.Errorf("create portal session: %w", err)
	}
	if sess.URL == "" {
		return "", fmt.Errorf("create portal session: empty url")
	}
	return sess.URL, nil
}
