package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dailymood/mood-tracker/internal/core/domain"
	"github.com/dailymood/mood-tracker/internal/core/ports"
)

// ProgressHandler serves the weekly progress summary.
type ProgressHandler struct {
	service ports.RecordService
}

func NewProgressHandler(service ports.RecordService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// Get handles GET /v1/progress.
//
// @Summary      Weekly progress and activity completion
// @Description  Weekly progress is the share of the seven days ending on date that have a record. Activity completion is taken from that day's record.
// @Tags         progress
// @Produce      json
// @Security     BearerAuth
// @Param        date  query     string  false  "Day as YYYY-MM-DD (defaults to today)"
// @Success      200   {object}  progressResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/progress [get]
func (h *ProgressHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	day, err := domain.ParseDay(c.QueryParam("date"), h.service.Location())
	if err != nil {
		return err
	}

	summary, err := h.service.WeeklyProgress(c.Request().Context(), userID, day)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProgressResponse(summary, h.service.Location()))
}
