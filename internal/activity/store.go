package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/chiefduck/ratewatch/internal/db"
)

const listActivitiesSQL = `SELECT id, type, message, status, created_at
FROM activities
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`

const maxLimit = 100

// PgStore reads the activities table.
type PgStore struct {
	db  db.DBTX
	now func() time.Time
}

func NewPgStore(conn db.DBTX) *PgStore {
	return &PgStore{db: conn, now: time.Now}
}

func (s *PgStore) List(ctx context.Context, userID string, limit int) ([]Activity, error) {
	pgID, err := db.ParseUUID(userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	rows, err := s.db.Query(ctx, listActivitiesSQL, pgID, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	now := s.now()
	var out []Activity
	for rows.Next() {
		var (
			id        pgtype.UUID
			typ       pgtype.Text
			message   pgtype.Text
			status    pgtype.Text
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &typ, &message, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, Activity{
			ID:        id.String(),
			Type:      Type(db.TextToString(typ)),
			Message:   db.TextToString(message),
			Status:    Status(db.TextToString(status)),
			Timestamp: humanize.RelTime(db.TimeFromPg(createdAt), now, "ago", "from now"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return out, nil
}
