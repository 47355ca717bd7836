package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/chiefduck/ratewatch/internal/db"
)

// ErrCustomerNotFound means the user has no active (non-deleted) billing customer.
var ErrCustomerNotFound = errors.New("customer not found")

const activeCustomerSQL = `SELECT stripe_customer_id FROM stripe_customers
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT 1`

// CustomerStore reads the stripe_customers mapping.
type CustomerStore struct {
	db db.DBTX
}

func NewCustomerStore(conn db.DBTX) *CustomerStore {
	return &CustomerStore{db: conn}
}

// ActiveCustomerID returns the billing customer id linked to userID,
// ignoring soft-deleted rows.
func (s *CustomerStore) ActiveCustomerID(ctx context.Context, userID string) (string, error) {
	pgID, err := db.ParseUUID(userID)
	if err != nil {
		return "", ErrCustomerNotFound
	}
	var customerID pgtype.Text
	if err := s.db.QueryRow(ctx, activeCustomerSQL, pgID).Scan(&customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCustomerNotFound
		}
		return "", fmt.Errorf("query stripe customer: %w", err)
	}
	if !customerID.Valid || customerID.String == "" {
		return "", ErrCustomerNotFound
	}
	return customerID.String, nil
}
