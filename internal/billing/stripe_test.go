package billing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiefduck/ratewatch/internal/logger"
	"github.com/chiefduck/ratewatch/internal/proxy"
)

func TestNewStripePortalRequiresKey(t *testing.T) {
	_, err := NewStripePortal(nil, "", "", 0)
	require.Error(t, err)
}

func TestCreateSession(t *testing.T) {
	var customer, returnURL, auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		assert.NoError(t, r.ParseForm())
		customer = r.PostForm.Get("customer")
		returnURL = r.PostForm.Get("return_url")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"bps_1","object":"billing_portal.session","customer":"cus_9","url":"https://billing.example.com/p/session/abc"}`)
	}))
	defer srv.Close()

	portal, err := NewStripePortal(logger.Discard(), "sk_test_123", srv.URL, time.Second)
	require.NoError(t, err)

	got, err := portal.CreateSession(context.Background(), "cus_9", "https://app.example.com/settings")
	require.NoError(t, err)
	assert.Equal(t, "https://billing.example.com/p/session/abc", got)
	assert.Equal(t, "/v1/billing_portal/sessions", path)
	assert.Equal(t, "Bearer sk_test_123", auth)
	assert.Equal(t, "cus_9", customer)
	assert.Equal(t, "https://app.example.com/settings", returnURL)
}

func TestCreateSessionStripeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"No such customer: 'cus_x'"}}`)
	}))
	defer srv.Close()

	portal, err := NewStripePortal(logger.Discard(), "sk_test_123", srv.URL, time.Second)
	require.NoError(t, err)

	_, err = portal.CreateSession(context.Background(), "cus_x", "https://app.example.com")
	require.Error(t, err)
	var perr *proxy.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, proxy.KindUpstream, perr.Kind)
	assert.Equal(t, http.StatusBadRequest, perr.UpstreamStatus)
	assert.Contains(t, perr.Message, "No such customer")
}
