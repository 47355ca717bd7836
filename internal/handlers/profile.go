package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chiefduck/ratewatch/internal/profiles"
)

// ProfileReader loads a user's profile; *profiles.Store implements it.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (profiles.Profile, error)
}

type ProfileHandler struct {
	profiles ProfileReader
	logger   *slog.Logger
}

type ProfileResponse struct {
	Profile profiles.Profile `json:"profile"`
	Header  profiles.Header  `json:"header"`
}

func NewProfileHandler(log *slog.Logger, reader ProfileReader) *ProfileHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ProfileHandler{profiles: reader, logger: log.With(slog.String("handler", "profile"))}
}

func (h *ProfileHandler) Register(e *echo.Echo) {
	e.GET("/api/profile", h.GetProfile)
}

// GetProfile returns the caller's profile and the header derived from it.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	p, err := h.profiles.Get(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("get profile failed", slog.String("user_id", userID), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load profile")
	}
	return c.JSON(http.StatusOK, ProfileResponse{Profile: p, Header: profiles.BuildHeader(p)})
}
