package calls

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiefduck/ratewatch/internal/logger"
	"github.com/chiefduck/ratewatch/internal/proxy"
)

type fakeController struct {
	err   error
	calls []string
}

func (f *fakeController) StopCall(_ context.Context, callID string) error {
	f.calls = append(f.calls, callID)
	return f.err
}

var stoppedAt = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func newTestService(ctrl Controller, conn pgxmock.PgxPoolIface) *Service {
	svc := NewService(logger.Discard(), ctrl, NewPgStore(conn))
	svc.now = func() time.Time { return stoppedAt }
	return svc
}

func TestStopUpdatesCallLog(t *testing.T) {
	ctrl := &fakeController{}
	mock := newMockDB(t)
	mock.ExpectExec(markStoppedSQL).
		WithArgs("call-7", StatusStopped, stoppedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	res, err := newTestService(ctrl, mock).Stop(context.Background(), " call-7 ")
	require.NoError(t, err)

	assert.Equal(t, MessageStopped, res.Message)
	assert.True(t, res.Updated)
	assert.False(t, res.AlreadyEnded)
	assert.Equal(t, []string{"call-7"}, ctrl.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStopAlreadyEndedIsSuccess(t *testing.T) {
	ctrl := &fakeController{err: ErrCallNotFound}
	mock := newMockDB(t)
	svc := newTestService(ctrl, mock)

	for i := 0; i < 2; i++ {
		res, err := svc.Stop(context.Background(), "call-7")
		require.NoError(t, err)
		assert.Equal(t, MessageAlreadyEnded, res.Message)
		assert.True(t, res.AlreadyEnded)
	}
	require.NoError(t, mock.ExpectationsWereMet(), "an already-ended call is not written")
}

func TestStopZeroRowsStillSucceeds(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectExec(markStoppedSQL).
		WithArgs("call-untracked", StatusStopped, stoppedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	res, err := newTestService(&fakeController{}, mock).Stop(context.Background(), "call-untracked")
	require.NoError(t, err)
	assert.Equal(t, MessageStopped, res.Message)
	assert.False(t, res.Updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStopDatabaseErrorStillSucceeds(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectExec(markStoppedSQL).
		WithArgs("call-7", StatusStopped, stoppedAt).
		WillReturnError(errors.New("connection refused"))

	res, err := newTestService(&fakeController{}, mock).Stop(context.Background(), "call-7")
	require.NoError(t, err)
	assert.False(t, res.Updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStopRequiresCallID(t *testing.T) {
	ctrl := &fakeController{}
	_, err := newTestService(ctrl, newMockDB(t)).Stop(context.Background(), "  ")
	assert.Equal(t, proxy.KindValidation, proxy.KindOf(err))
	assert.Empty(t, ctrl.calls)
}

func TestStopPropagatesUpstreamError(t *testing.T) {
	upstream := proxy.Upstream("Bland", 500, "internal")
	mock := newMockDB(t)
	_, err := newTestService(&fakeController{err: upstream}, mock).Stop(context.Background(), "call-7")
	assert.ErrorIs(t, err, upstream)
	require.NoError(t, mock.ExpectationsWereMet())
}
