package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiefduck/ratewatch/internal/logger"
)

type stubCustomers struct {
	id  string
	err error
}

func (s stubCustomers) ActiveCustomerID(context.Context, string) (string, error) {
	return s.id, s.err
}

type recordingPortal struct {
	customer, returnURL string
	calls               int
}

func (p *recordingPortal) CreateSession(_ context.Context, customerID, returnURL string) (string, error) {
	p.calls++
	p.customer = customerID
	p.returnURL = returnURL
	return "https://portal.example.com/s/1", nil
}

func TestPortalURL(t *testing.T) {
	portal := &recordingPortal{}
	svc := NewService(logger.Discard(), stubCustomers{id: "cus_1"}, portal, "https://app.example.com/")

	got, err := svc.PortalURL(context.Background(), "user-1", "https://app.example.com/billing")
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example.com/s/1", got)
	assert.Equal(t, "cus_1", portal.customer)
	assert.Equal(t, "https://app.example.com/billing", portal.returnURL)
}

func TestPortalURLDefaultReturn(t *testing.T) {
	portal := &recordingPortal{}
	svc := NewService(logger.Discard(), stubCustomers{id: "cus_1"}, portal, "https://app.example.com/")

	_, err := svc.PortalURL(context.Background(), "user-1", "  ")
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/", portal.returnURL)
}

func TestPortalURLRejectsRelativeReturn(t *testing.T) {
	portal := &recordingPortal{}
	svc := NewService(logger.Discard(), stubCustomers{id: "cus_1"}, portal, "")

	for _, raw := range []string{"", "/settings", "javascript:alert(1)", "ftp://files.example.com"} {
		_, err := svc.PortalURL(context.Background(), "user-1", raw)
		assert.ErrorIs(t, err, ErrInvalidReturnURL, raw)
	}
	assert.Zero(t, portal.calls)
}

func TestPortalURLNoCustomer(t *testing.T) {
	portal := &recordingPortal{}
	svc := NewService(logger.Discard(), stubCustomers{err: ErrCustomerNotFound}, portal, "https://app.example.com")

	_, err := svc.PortalURL(context.Background(), "user-1", "")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.Zero(t, portal.calls)
}
