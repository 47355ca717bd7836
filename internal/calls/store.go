package calls

import (
	"context"
	"fmt"
	"time"

	"github.com/chiefduck/ratewatch/internal/db"
)

// StatusStopped is written to call_logs.call_status when a call is stopped.
const StatusStopped = "stopped"

const markStoppedSQL = `UPDATE call_logs SET call_status = $2, completed_at = $3 WHERE bland_call_id = $1`

// PgStore persists call state in the call_logs table.
type PgStore struct {
	db db.DBTX
}

func NewPgStore(conn db.DBTX) *PgStore {
	return &PgStore{db: conn}
}

// MarkStopped records the stop and returns the number of rows matched.
func (s *PgStore) MarkStopped(ctx context.Context, blandCallID string, at time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, markStoppedSQL, blandCallID, StatusStopped, at)
	if err != nil {
		return 0, fmt.Errorf("mark call stopped: %w", err)
	}
	return tag.RowsAffected(), nil
}
