// Package calls implements stop-call: ending a Bland call and recording it in call_logs.
package calls

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/chiefduck/ratewatch/internal/proxy"
)

// Messages returned to the caller.
const (
	MessageStopped      = "Call stopped successfully"
	MessageAlreadyEnded = "Call already ended"
)

// Controller ends calls on the calling platform.
type Controller interface {
	StopCall(ctx context.Context, callID string) error
}

// Store records call state.
type Store interface {
	MarkStopped(ctx context.Context, blandCallID string, at time.Time) (int64, error)
}

// Result describes a successful stop.
type Result struct {
	Message string
	// AlreadyEnded is set when the platform reported the call as gone.
	AlreadyEnded bool
	// Updated is false when no call_logs row matched or the write failed.
	Updated bool
}

type Service struct {
	controller Controller
	store      Store
	now        func() time.Time
	logger     *slog.Logger
}

func NewService(log *slog.Logger, controller Controller, store Store) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		controller: controller,
		store:      store,
		now:        time.Now,
		logger:     log.With(slog.String("service", "calls")),
	}
}

// Stop ends the call. Stopping a call the platform no longer knows is a
// success, so repeating a stop never surfaces an error. The call_logs write
// is best-effort: a failed or zero-row update is logged and does not fail
// the request.
func (s *Service) Stop(ctx context.Context, callID string) (Result, error) {
	callID = strings.TrimSpace(callID)
	if callID == "" {
		return Result{}, proxy.Validation("callId is required")
	}
	if s.controller == nil {
		return Result{}, errors.New("call controller not configured")
	}

	if err := s.controller.StopCall(ctx, callID); err != nil {
		if errors.Is(err, ErrCallNotFound) {
			s.logger.Info("call already ended", slog.String("call_id", callID))
			return Result{Message: MessageAlreadyEnded, AlreadyEnded: true}, nil
		}
		return Result{}, err
	}

	result := Result{Message: MessageStopped}
	if s.store == nil {
		return result, nil
	}
	rows, err := s.store.MarkStopped(ctx, callID, s.now().UTC())
	switch {
	case err != nil:
		s.logger.Warn("call stopped but status update failed", slog.String("call_id", callID), slog.Any("error", err))
	case rows == 0:
		s.logger.Warn("call stopped but no call_logs row matched", slog.String("call_id", callID))
	default:
		result.Updated = true
	}
	return result, nil
}
