package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dailymood/mood-tracker/internal/core/domain"
	"github.com/dailymood/mood-tracker/internal/core/ports"
)

// defaultListDays is the window returned by List when no bounds are given.
const defaultListDays = domain.WeekLength

// RecordHandler handles HTTP requests for daily records.
type RecordHandler struct {
	service ports.RecordService
}

func NewRecordHandler(service ports.RecordService) *RecordHandler {
	return &RecordHandler{service: service}
}

// UpsertDay handles PUT /v1/records/day.
//
// @Summary      Create or update the record for a day
// @Description  Merges the body into the caller's record for the day, creating it with defaults when absent. Activities replace the stored map.
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      upsertRecordRequest  true  "Fields to merge"
// @Success      200   {object}  upsertRecordResponse
// @Success      201   {object}  upsertRecordResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/records/day [put]
func (h *RecordHandler) UpsertDay(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req upsertRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	day, err := domain.ParseDay(req.Date, h.service.Location())
	if err != nil {
		return err
	}

	res, err := h.service.UpsertDailyRecord(c.Request().Context(), userID, day, toRecordUpdate(req.recordUpdateRequest))
	if err != nil {
		return err
	}
	return h.writeUpsert(c, res)
}

// GetDay handles GET /v1/records/day.
//
// @Summary      Get the record for a day
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        date  query     string  false  "Day as YYYY-MM-DD (defaults to today)"
// @Success      200   {object}  recordResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/records/day [get]
func (h *RecordHandler) GetDay(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	day, err := domain.ParseDay(c.QueryParam("date"), h.service.Location())
	if err != nil {
		return err
	}

	rec, found, err := h.service.GetRecordForDay(c.Request().Context(), userID, day)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrRecordNotFound
	}
	return c.JSON(http.StatusOK, toRecordResponse(rec, h.service.Location()))
}

// List handles GET /v1/records.
//
// @Summary      List records in a day range
// @Description  Returns records with from <= day < to, newest first. Defaults to the last seven days including today.
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "First day, inclusive"
// @Param        to    query     string  false  "Last day, exclusive"
// @Success      200   {object}  recordListResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/records [get]
func (h *RecordHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	loc := h.service.Location()
	from, err := domain.ParseDay(c.QueryParam("from"), loc)
	if err != nil {
		return err
	}
	to, err := domain.ParseDay(c.QueryParam("to"), loc)
	if err != nil {
		return err
	}
	from, to = h.listBounds(from, to)

	recs, err := h.service.GetRecordsInRange(c.Request().Context(), userID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecordListResponse(recs, from, to, loc))
}

// Patch handles PATCH /v1/records/:id.
//
// @Summary      Merge fields into a known record
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Record ID"
// @Param        body  body      recordUpdateRequest  true  "Fields to merge"
// @Success      200   {object}  recordResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/records/{id} [patch]
func (h *RecordHandler) Patch(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req recordUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.UpdateRecordByID(c.Request().Context(), userID, c.Param("id"), toRecordUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecordResponse(res.Record, h.service.Location()))
}

// ToggleActivity handles POST /v1/records/day/activities/:activity/toggle.
//
// @Summary      Flip one activity for a day
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        activity  path      string  true   "exercise, reading, meditation or journaling"
// @Param        date      query     string  false  "Day as YYYY-MM-DD (defaults to today)"
// @Success      200       {object}  upsertRecordResponse
// @Success      201       {object}  upsertRecordResponse
// @Failure      401       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Router       /v1/records/day/activities/{activity}/toggle [post]
func (h *RecordHandler) ToggleActivity(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	day, err := domain.ParseDay(c.QueryParam("date"), h.service.Location())
	if err != nil {
		return err
	}

	res, err := h.service.ToggleActivity(c.Request().Context(), userID, day, domain.Activity(c.Param("activity")))
	if err != nil {
		return err
	}
	return h.writeUpsert(c, res)
}

func (h *RecordHandler) writeUpsert(c echo.Context, res *ports.UpsertResult) error {
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, upsertRecordResponse{
		Record:  toRecordResponse(res.Record, h.service.Location()),
		Created: res.Created,
	})
}

// listBounds fills in missing range bounds around today.
func (h *RecordHandler) listBounds(from, to time.Time) (time.Time, time.Time) {
	loc := h.service.Location()
	switch {
	case from.IsZero() && to.IsZero():
		to = domain.AddDays(h.service.Today(), 1, loc)
		from = domain.AddDays(to, -defaultListDays, loc)
	case from.IsZero():
		from = domain.AddDays(to, -defaultListDays, loc)
	case to.IsZero():
		to = domain.AddDays(from, defaultListDays, loc)
	}
	return from, to
}
