// Package billing implements stripe-portal: resolving a user's billing
// customer and opening a hosted portal session for it.
package billing

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
)

// CustomerLookup resolves the active billing customer for a user.
type CustomerLookup interface {
	ActiveCustomerID(ctx context.Context, userID string) (string, error)
}

// PortalCreator opens a billing-portal session.
type PortalCreator interface {
	CreateSession(ctx context.Context, customerID, returnURL string) (string, error)
}

var ErrInvalidReturnURL = errors.New("return_url must be an absolute http(s) URL")

type Service struct {
	customers        CustomerLookup
	portal           PortalCreator
	defaultReturnURL string
	logger           *slog.Logger
}

func NewService(log *slog.Logger, customers CustomerLookup, portal PortalCreator, defaultReturnURL string) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		customers:        customers,
		portal:           portal,
		defaultReturnURL: strings.TrimSpace(defaultReturnURL),
		logger:           log.With(slog.String("service", "billing")),
	}
}

// PortalURL returns a portal session URL for userID. An empty returnURL
// falls back to the configured default.
func (s *Service) PortalURL(ctx context.Context, userID, returnURL string) (string, error) {
	target, err := s.returnURL(returnURL)
	if err != nil {
		return "", err
	}
	customerID, err := s.customers.ActiveCustomerID(ctx, userID)
	if err != nil {
		return "", err
	}
	if s.portal == nil {
		return "", errors.New("billing portal not configured")
	}
	portalURL, err := s.portal.CreateSession(ctx, customerID, target)
	if err != nil {
		return "", err
	}
	s.logger.Info("portal session created", slog.String("user_id", userID))
	return portalURL, nil
}

func (s *Service) returnURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = s.defaultReturnURL
	}
	if raw == "" {
		return "", ErrInvalidReturnURL
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidReturnURL
	}
	return u.String(), nil
}
