package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiefduck/ratewatch/internal/activity"
	"github.com/chiefduck/ratewatch/internal/auth"
	"github.com/chiefduck/ratewatch/internal/logger"
	"github.com/chiefduck/ratewatch/internal/notify"
	"github.com/chiefduck/ratewatch/internal/profiles"
)

type testFlusher struct{}

func (f *testFlusher) Flush() {}

func newAPIEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Use(auth.JWTMiddleware(testSecret, func(c echo.Context) bool {
		return !strings.HasPrefix(c.Path(), "/api")
	}))
	return e
}

func doAPI(t *testing.T, e *echo.Echo, method, path, authHeader, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type stubProfiles struct {
	p   profiles.Profile
	err error
}

func (s stubProfiles) Get(context.Context, string) (profiles.Profile, error) { return s.p, s.err }

func TestProfileHandler(t *testing.T) {
	e := newAPIEcho()
	NewProfileHandler(logger.Discard(), stubProfiles{p: profiles.Profile{FullName: "Ana Lopez", Company: "Harbor Home Loans"}}).Register(e)

	rec := doAPI(t, e, http.MethodGet, "/api/profile", bearer(t, "u1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Ana Lopez", resp.Header.DisplayName)
	assert.Equal(t, "AL", resp.Header.Initials)
	assert.Equal(t, "Harbor Home Loans", resp.Header.Company)
}

func TestProfileHandlerEmptyProfileFallsBack(t *testing.T) {
	e := newAPIEcho()
	NewProfileHandler(logger.Discard(), stubProfiles{}).Register(e)

	rec := doAPI(t, e, http.MethodGet, "/api/profile", bearer(t, "u1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, profiles.FallbackName, resp.Header.DisplayName)
}

func TestProfileHandlerErrors(t *testing.T) {
	e := newAPIEcho()
	NewProfileHandler(logger.Discard(), stubProfiles{err: errors.New("db down")}).Register(e)

	rec := doAPI(t, e, http.MethodGet, "/api/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doAPI(t, e, http.MethodGet, "/api/profile", bearer(t, "u1"), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed to load profile", body.Message)
}

func TestActivityHandler(t *testing.T) {
	src, err := activity.NewStaticSource(nil)
	require.NoError(t, err)
	e := newAPIEcho()
	NewActivityHandler(logger.Discard(), src, 3).Register(e)

	rec := doAPI(t, e, http.MethodGet, "/api/activities", bearer(t, "u1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ActivityListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 3)
	assert.Equal(t, activity.IconTrendUp, resp.Items[0].Icon)
	assert.Equal(t, activity.ToneGreen, resp.Items[0].Tone)
	assert.Equal(t, activity.ToneGray, resp.Items[2].Tone)

	rec = doAPI(t, e, http.MethodGet, "/api/activities?limit=1", bearer(t, "u1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)

	rec = doAPI(t, e, http.MethodGet, "/api/activities?limit=zero", bearer(t, "u1"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func newToastEcho(t *testing.T) (*echo.Echo, *notify.Center) {
	t.Helper()
	center, err := notify.NewCenter(logger.Discard(), notify.NewHub(), notify.Options{ExitGrace: 10 * time.Millisecond}, "")
	require.NoError(t, err)
	t.Cleanup(center.Close)
	e := newAPIEcho()
	NewToastHandler(logger.Discard(), center).Register(e)
	return e, center
}

func TestToastHandlerCreateListDismiss(t *testing.T) {
	e, center := newToastEcho(t)
	token := bearer(t, "u1")

	rec := doAPI(t, e, http.MethodPost, "/api/toasts", token, `{"type":"success","message":"Saved","duration":60000}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created ToastResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(60000), created.DurationMS)
	assert.Equal(t, notify.StateVisible, created.State)
	assert.False(t, created.Exiting)

	rec = doAPI(t, e, http.MethodGet, "/api/toasts", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list ToastListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ID, list.Items[0].ID)

	rec = doAPI(t, e, http.MethodGet, "/api/toasts", bearer(t, "u2"), "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Items, "toasts are per user")

	rec = doAPI(t, e, http.MethodDelete, "/api/toasts/"+created.ID, token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doAPI(t, e, http.MethodDelete, "/api/toasts/"+created.ID, token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code, "double dismiss is harmless")

	require.Eventually(t, func() bool { return len(center.List("u1")) == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestToastHandlerCreateValidation(t *testing.T) {
	e, _ := newToastEcho(t)
	token := bearer(t, "u1")

	for _, body := range []string{`{"message":""}`, `{"type":"fatal","message":"x"}`, `{"message":"x","duration":-5}`} {
		rec := doAPI(t, e, http.MethodPost, "/api/toasts", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	rec := doAPI(t, e, http.MethodPost, "/api/toasts", "", `{"message":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestToastStream(t *testing.T) {
	e, center := newToastEcho(t)
	_, err := center.Add("u1", notify.Toast{ID: "existing", Message: "hello", Duration: time.Minute})
	require.NoError(t, err)

	srv := httptest.NewServer(e)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/toasts/stream", nil)
	require.NoError(t, err)
	req.Header.Set(echo.HeaderAuthorization, bearer(t, "u1"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get(echo.HeaderContentType))

	reader := bufio.NewReader(resp.Body)
	next := func() map[string]any {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var payload map[string]any
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &payload))
			return payload
		}
	}

	snapshot := next()
	assert.Equal(t, "snapshot", snapshot["type"])

	require.True(t, center.Dismiss("u1", "existing"))
	exiting := next()
	assert.Equal(t, "exiting", exiting["type"])
	assert.Equal(t, "existing", exiting["toast"].(map[string]any)["id"])
	assert.Equal(t, "removed", next()["type"])
}

func TestSnapshotFilterDropsEventsAlreadyInSnapshot(t *testing.T) {
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	visible := notify.Toast{ID: "a", State: notify.StateVisible, CreatedAt: created}
	exiting := notify.Toast{ID: "b", State: notify.StateExiting, CreatedAt: created}
	seen := newSnapshotFilter([]notify.Toast{visible, exiting})

	assert.True(t, seen(notify.Event{Kind: notify.EventAdded, Toast: visible}), "added between subscribe and snapshot")
	assert.True(t, seen(notify.Event{Kind: notify.EventAdded, Toast: notify.Toast{ID: "b", State: notify.StateVisible, CreatedAt: created}}))
	assert.True(t, seen(notify.Event{Kind: notify.EventExiting, Toast: exiting}))

	leaving := visible
	leaving.State = notify.StateExiting
	assert.False(t, seen(notify.Event{Kind: notify.EventExiting, Toast: leaving}))
	assert.False(t, seen(notify.Event{Kind: notify.EventAdded, Toast: visible}), "entry retired after a newer event")

	replaced := notify.Toast{ID: "b", State: notify.StateVisible, CreatedAt: created.Add(time.Second)}
	assert.False(t, seen(notify.Event{Kind: notify.EventAdded, Toast: replaced}), "re-added id is a new instance")
	assert.False(t, seen(notify.Event{Kind: notify.EventAdded, Toast: notify.Toast{ID: "c"}}))
}

func TestWriteSSEJSON(t *testing.T) {
	var output bytes.Buffer
	writer := bufio.NewWriter(&output)

	require.NoError(t, writeSSEJSON(writer, &testFlusher{}, map[string]any{"type": "ping"}))
	assert.Equal(t, "data: {\"type\":\"ping\"}\n\n", output.String())
}
