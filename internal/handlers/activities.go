package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chiefduck/ratewatch/internal/activity"
)

type ActivityHandler struct {
	source       activity.Source
	defaultLimit int
	logger       *slog.Logger
}

type ActivityListResponse struct {
	Items []activity.Item `json:"items"`
}

func NewActivityHandler(log *slog.Logger, source activity.Source, defaultLimit int) *ActivityHandler {
	if log == nil {
		log = slog.Default()
	}
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &ActivityHandler{
		source:       source,
		defaultLimit: defaultLimit,
		logger:       log.With(slog.String("handler", "activity")),
	}
}

func (h *ActivityHandler) Register(e *echo.Echo) {
	e.GET("/api/activities", h.List)
}

// List returns the caller's recent activities, rendered with icon and tone.
func (h *ActivityHandler) List(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	limit := h.defaultLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	items, err := h.source.List(c.Request().Context(), userID, limit)
	if err != nil {
		h.logger.Error("list activities failed", slog.String("user_id", userID), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load activities")
	}
	return c.JSON(http.StatusOK, ActivityListResponse{Items: activity.Render(items)})
}
