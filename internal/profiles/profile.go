// Package profiles reads the user profile shown in the dashboard header.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/chiefduck/ratewatch/internal/db"
)

// FallbackName is displayed when the profile has no name.
const FallbackName = "User"

// Profile is the header snapshot. Both fields are optional.
type Profile struct {
	FullName  string    `json:"full_name,omitempty"`
	Company   string    `json:"company,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Header is what the dashboard renders.
type Header struct {
	DisplayName string `json:"display_name"`
	Company     string `json:"company,omitempty"`
	Initials    string `json:"initials"`
}

// BuildHeader resolves display values for p.
func BuildHeader(p Profile) Header {
	name := strings.Join(strings.Fields(p.FullName), " ")
	if name == "" {
		name = FallbackName
	}
	return Header{
		DisplayName: name,
		Company:     strings.TrimSpace(p.Company),
		Initials:    initials(name),
	}
}

// initials takes the first letter of up to two words.
func initials(name string) string {
	out := make([]rune, 0, 2)
	for _, part := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(part)
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

const getProfileSQL = `SELECT full_name, company, updated_at FROM profiles WHERE id = $1`

type Store struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewStore(log *slog.Logger, conn db.DBTX) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: conn, logger: log.With(slog.String("service", "profiles"))}
}

// Get returns the user's profile. A user without a profile row gets an
// empty profile.
func (s *Store) Get(ctx context.Context, userID string) (Profile, error) {
	pgID, err := db.ParseUUID(userID)
	if err != nil {
		return Profile{}, err
	}
	var (
		fullName  pgtype.Text
		company   pgtype.Text
		updatedAt pgtype.Timestamptz
	)
	err = s.db.QueryRow(ctx, getProfileSQL, pgID).Scan(&fullName, &company, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Debug("no profile row", slog.String("user_id", userID))
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return Profile{
		FullName:  db.TextToString(fullName),
		Company:   db.TextToString(company),
		UpdatedAt: db.TimeFromPg(updatedAt),
	}, nil
}
