package modules

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/fx"

	"github.com/chiefduck/ratewatch/internal/activity"
	"github.com/chiefduck/ratewatch/internal/auth"
	"github.com/chiefduck/ratewatch/internal/billing"
	"github.com/chiefduck/ratewatch/internal/boot"
	"github.com/chiefduck/ratewatch/internal/calls"
	"github.com/chiefduck/ratewatch/internal/config"
	"github.com/chiefduck/ratewatch/internal/db"
	"github.com/chiefduck/ratewatch/internal/handlers"
	"github.com/chiefduck/ratewatch/internal/notify"
	"github.com/chiefduck/ratewatch/internal/profiles"
	"github.com/chiefduck/ratewatch/internal/users"
)

var DomainModule = fx.Module(
	"domain",
	fx.Provide(
		fx.Annotate(users.NewService, fx.As(new(auth.UserGetter))),
		fx.Annotate(profiles.NewStore, fx.As(new(handlers.ProfileReader))),
		notify.NewHub,

		provideResolver,
		provideAuthenticators,
		provideCallStopper,
		providePortalLinker,
		provideActivitySource,
		provideNotifyCenter,
	),
)

// ---------------------------------------------------------------------------
// domain service providers (interface adapters)
// ---------------------------------------------------------------------------

func provideResolver(rc *boot.RuntimeConfig, users auth.UserGetter) *auth.Resolver {
	return auth.NewResolver(rc.JwtSecret, users)
}

func provideAuthenticators(r *auth.Resolver) (handlers.TokenAuthenticator, handlers.UserResolver) {
	return r, r
}

// provideCallStopper returns a nil stopper when no Bland key is set; the
// stop-call function then answers "not configured" instead of failing startup.
func provideCallStopper(log *slog.Logger, cfg config.Config, rc *boot.RuntimeConfig, conn db.DBTX) (handlers.CallStopper, error) {
	if strings.TrimSpace(rc.BlandAPIKey) == "" {
		log.Warn("bland api key not set, stop-call disabled")
		return nil, nil
	}
	client, err := calls.NewBlandClient(log, cfg.Bland.BaseURL, rc.BlandAPIKey, cfg.Bland.Timeout())
	if err != nil {
		return nil, err
	}
	return calls.NewService(log, client, calls.NewPgStore(conn)), nil
}

func providePortalLinker(log *slog.Logger, cfg config.Config, rc *boot.RuntimeConfig, conn db.DBTX) (handlers.PortalLinker, error) {
	if strings.TrimSpace(rc.StripeSecretKey) == "" {
		log.Warn("stripe secret key not set, stripe-portal disabled")
		return nil, nil
	}
	portal, err := billing.NewStripePortal(log, rc.StripeSecretKey, cfg.Stripe.BaseURL, cfg.Stripe.Timeout())
	if err != nil {
		return nil, err
	}
	return billing.NewService(log, billing.NewCustomerStore(conn), portal, cfg.Stripe.DefaultReturnURL), nil
}

func provideActivitySource(cfg config.Config, conn db.DBTX) (activity.Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Feed.Source)) {
	case "static":
		return activity.NewStaticSource(nil)
	case "", "postgres":
		return activity.NewPgStore(conn), nil
	default:
		return nil, fmt.Errorf("unknown feed source %q", cfg.Feed.Source)
	}
}

func provideNotifyCenter(lc fx.Lifecycle, log *slog.Logger, hub *notify.Hub, cfg config.Config) (*notify.Center, error) {
	center, err := notify.NewCenter(log, hub, notify.Options{
		DefaultDuration: cfg.Notify.DefaultDuration(),
		ExitGrace:       cfg.Notify.ExitGrace(),
	}, cfg.Notify.PruneSchedule)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			center.Close()
			return nil
		},
	})
	return center, nil
}
