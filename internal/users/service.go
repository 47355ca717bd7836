// Package users resolves identity provider subjects to user rows.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/chiefduck/ratewatch/internal/db"
)

// ErrUserNotFound is returned when the token subject has no user row.
var ErrUserNotFound = errors.New("user not found")

// User is the identity snapshot the handlers need.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewService(log *slog.Logger, conn db.DBTX) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:     conn,
		logger: log.With(slog.String("service", "users")),
	}
}

const getUserSQL = `SELECT id, email, created_at FROM users WHERE id = $1`

// Get returns the user with the given id. Ids that are not UUIDs cannot
// exist and are reported as ErrUserNotFound.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	if s.db == nil {
		return User{}, fmt.Errorf("user queries not configured")
	}
	pgID, err := db.ParseUUID(userID)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	var (
		id        pgtype.UUID
		email     pgtype.Text
		createdAt pgtype.Timestamptz
	)
	if err := s.db.QueryRow(ctx, getUserSQL, pgID).Scan(&id, &email, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return User{
		ID:        uuid.UUID(id.Bytes).String(),
		Email:     db.TextToString(email),
		CreatedAt: db.TimeFromPg(createdAt),
	}, nil
}
