package handlers

import (
	"bufio"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chiefduck/ratewatch/internal/notify"
)

type ToastHandler struct {
	center *notify.Center
	logger *slog.Logger
}

type CreateToastRequest struct {
	ID         string `json:"id,omitempty"`
	Type       string `json:"type"`
	Message    string `json:"message"`
	DurationMS int    `json:"duration,omitempty"`
}

type ToastResponse struct {
	ID         string       `json:"id"`
	Type       notify.Type  `json:"type"`
	Message    string       `json:"message"`
	DurationMS int64        `json:"duration"`
	State      notify.State `json:"state"`
	Exiting    bool         `json:"exiting"`
	CreatedAt  time.Time    `json:"created_at"`
}

type ToastListResponse struct {
	Items []ToastResponse `json:"items"`
}

type toastEventPayload struct {
	Type  notify.EventKind `json:"type"`
	Toast ToastResponse    `json:"toast"`
	At    time.Time        `json:"at"`
}

func NewToastHandler(log *slog.Logger, center *notify.Center) *ToastHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ToastHandler{center: center, logger: log.With(slog.String("handler", "toasts"))}
}

func (h *ToastHandler) Register(e *echo.Echo) {
	g := e.Group("/api/toasts")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/stream", h.Stream)
	g.DELETE("/:id", h.Dismiss)
}

func toToastResponse(t notify.Toast) ToastResponse {
	return ToastResponse{
		ID:         t.ID,
		Type:       t.Type,
		Message:    t.Message,
		DurationMS: t.Duration.Milliseconds(),
		State:      t.State,
		Exiting:    t.Exiting(),
		CreatedAt:  t.CreatedAt,
	}
}

// List returns the caller's toasts in display order.
func (h *ToastHandler) List(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	toasts := h.center.List(userID)
	items := make([]ToastResponse, 0, len(toasts))
	for _, t := range toasts {
		items = append(items, toToastResponse(t))
	}
	return c.JSON(http.StatusOK, ToastListResponse{Items: items})
}

// Create queues a toast for the caller.
func (h *ToastHandler) Create(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req CreateToastRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DurationMS < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "duration must not be negative")
	}
	toast, err := h.center.Add(userID, notify.Toast{
		ID:       strings.TrimSpace(req.ID),
		Type:     notify.Type(req.Type),
		Message:  req.Message,
		Duration: time.Duration(req.DurationMS) * time.Millisecond,
	})
	if err != nil {
		if errors.Is(err, notify.ErrInvalidType) || errors.Is(err, notify.ErrEmptyMessage) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toToastResponse(toast))
}

// Dismiss starts the exit transition. Dismissing an unknown or already
// exiting toast is not an error.
func (h *ToastHandler) Dismiss(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "toast id is required")
	}
	h.center.Dismiss(userID, id)
	return c.NoContent(http.StatusNoContent)
}

// Stream pushes the caller's toast transitions as server-sent events. It
// subscribes before taking the snapshot so nothing is lost in between, and
// drops buffered events the snapshot already reflects.
func (h *ToastHandler) Stream(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming not supported")
	}
	stream, cancel := h.center.Subscribe(userID)
	defer cancel()

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	writer := bufio.NewWriter(c.Response().Writer)

	snapshot := h.center.List(userID)
	seen := newSnapshotFilter(snapshot)
	for _, t := range snapshot {
		if err := writeSSEJSON(writer, flusher, toastEventPayload{Type: "snapshot", Toast: toToastResponse(t), At: t.CreatedAt}); err != nil {
			return nil
		}
	}

	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()
	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-heartbeat.C:
			if err := writeSSEJSON(writer, flusher, map[string]any{"type": "ping"}); err != nil {
				return nil
			}
		case ev, ok := <-stream:
			if !ok {
				return nil
			}
			if seen(ev) {
				continue
			}
			if err := writeSSEJSON(writer, flusher, toastEventPayload{Type: ev.Kind, Toast: toToastResponse(ev.Toast), At: ev.At}); err != nil {
				h.logger.Debug("toast stream closed", slog.String("user_id", userID), slog.Any("error", err))
				return nil
			}
		}
	}
}

// newSnapshotFilter reports whether ev describes a transition already
// visible in snapshot: the same toast instance at the same or an earlier
// state. The first newer event for a toast retires its snapshot entry.
func newSnapshotFilter(snapshot []notify.Toast) func(notify.Event) bool {
	known := make(map[string]notify.Toast, len(snapshot))
	for _, t := range snapshot {
		known[t.ID] = t
	}
	return func(ev notify.Event) bool {
		t, ok := known[ev.Toast.ID]
		if !ok {
			return false
		}
		if ev.Toast.CreatedAt.Equal(t.CreatedAt) && ev.Toast.State <= t.State {
			return true
		}
		delete(known, ev.Toast.ID)
		return false
	}
}
