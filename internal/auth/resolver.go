package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/chiefduck/ratewatch/internal/users"
)

// UserGetter looks up the user row behind a verified subject.
type UserGetter interface {
	Get(ctx context.Context, userID string) (users.User, error)
}

// Resolver turns an Authorization header into a caller identity.
type Resolver struct {
	secret string
	users  UserGetter
}

func NewResolver(secret string, users UserGetter) *Resolver {
	return &Resolver{secret: secret, users: users}
}

// Authenticate checks the header carries a valid token and returns its subject.
func (r *Resolver) Authenticate(header string) (string, error) {
	raw, err := BearerToken(header)
	if err != nil {
		return "", err
	}
	claims, err := Verify(raw, r.secret)
	if err != nil {
		return "", err
	}
	return claims.Identity(), nil
}

// Resolve authenticates the header and loads the matching user.
// A valid token whose subject has no user row yields users.ErrUserNotFound.
func (r *Resolver) Resolve(ctx context.Context, header string) (users.User, error) {
	userID, err := r.Authenticate(header)
	if err != nil {
		return users.User{}, err
	}
	if r.users == nil {
		return users.User{}, errors.New("user directory not configured")
	}
	user, err := r.users.Get(ctx, userID)
	if err != nil {
		return users.User{}, err
	}
	if strings.TrimSpace(user.ID) == "" {
		return users.User{}, users.ErrUserNotFound
	}
	return user, nil
}
