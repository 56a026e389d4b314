package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
)

const defaultActivityLimit = 50

// ActivityHandler exposes the admin activity trail.
type ActivityHandler struct {
	repo ports.ActivityRepository
}

// NewActivityHandler accepts a nil repo when the trail is disabled; the
// endpoint then returns an empty list.
func NewActivityHandler(repo ports.ActivityRepository) *ActivityHandler {
	return &ActivityHandler{repo: repo}
}

// Recent lists the newest events.
//
// @Summary      Recent admin activity
// @Tags         admin
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of events (default 50)"
// @Success      200    {object}  envelope{data=[]domain.ActivityEvent}
// @Failure      401    {object}  api.errorResponse
// @Failure      503    {object}  api.errorResponse
// @Router       /api/admin/activity [get]
func (h *ActivityHandler) Recent(c echo.Context) error {
	limit, err := queryInt(c, "limit", defaultActivityLimit)
	if err != nil {
		return err
	}

	if h.repo == nil {
		return respondList(c, http.StatusOK, []domain.ActivityEvent{}, false)
	}

	events, err := h.repo.Recent(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, events, false)
}
