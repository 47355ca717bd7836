package modules

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/chiefduck/ratewatch/internal/activity"
	"github.com/chiefduck/ratewatch/internal/config"
	"github.com/chiefduck/ratewatch/internal/handlers"
	"github.com/chiefduck/ratewatch/internal/server"
)

var HandlersModule = fx.Module(
	"handlers",
	fx.Provide(
		// Custom handlers with provide functions
		annotateHandler(provideActivityHandler),

		// Simple handlers from handlers package
		annotateHandler(handlers.NewPingHandler),
		annotateHandler(handlers.NewStopCallHandler),
		annotateHandler(handlers.NewStripePortalHandler),
		annotateHandler(handlers.NewTestWebhookHandler),
		annotateHandler(handlers.NewProfileHandler),
		annotateHandler(handlers.NewToastHandler),
	),
)

// annotateHandler wraps a handler provider function with fx.Annotate
// to register it as a server.Handler with the correct group tag
func annotateHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

// ---------------------------------------------------------------------------
// handler providers (config extraction)
// ---------------------------------------------------------------------------

func provideActivityHandler(log *slog.Logger, source activity.Source, cfg config.Config) *handlers.ActivityHandler {
	return handlers.NewActivityHandler(log, source, cfg.Feed.Limit)
}
