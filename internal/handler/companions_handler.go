package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tahfidzid/mutqin-backend/internal/middleware"
	"github.com/tahfidzid/mutqin-backend/internal/model"
	"github.com/tahfidzid/mutqin-backend/internal/pairing"
	"github.com/tahfidzid/mutqin-backend/internal/repository"
	"github.com/tahfidzid/mutqin-backend/internal/response"
	"github.com/tahfidzid/mutqin-backend/internal/service"
	"github.com/tahfidzid/mutqin-backend/internal/validator"
)

// CompanionsHandler exposes the pairing engine: staff generation, locking,
// publication and room views, plus the student lobby view.
type CompanionsHandler struct {
	companionsService *service.CompanionsService
}

// NewCompanionsHandler creates a new CompanionsHandler.
func NewCompanionsHandler(companionsService *service.CompanionsService) *CompanionsHandler {
	return &CompanionsHandler{companionsService: companionsService}
}

// classAndDate parses the :id and :date path params shared by all per-day
// staff endpoints. Responds with a failure and returns ok=false on bad input.
func classAndDate(c *gin.Context) (classID int, date time.Time, ok bool) {
	classID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, time.Time{}, false
	}
	date, err = parseDate(c.Param("date"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidDate)
		return 0, time.Time{}, false
	}
	return classID, date, true
}

// failCompanions maps engine errors onto the response envelope.
func failCompanions(c *gin.Context, err error) {
	var lge *pairing.LockedGroupError
	switch {
	case errors.As(err, &lge):
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrLockedGroupInvalid, lge.Error())
	case errors.Is(err, repository.ErrAlreadyPublished):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyPublished)
	case errors.Is(err, repository.ErrCompanionDayNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotPublished):
		response.Fail(c, http.StatusNotFound, response.ErrNotPublished)
	case errors.Is(err, service.ErrInsufficientStudents):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInsufficientStudents)
	case errors.Is(err, service.ErrStudentNotAssigned):
		response.Fail(c, http.StatusNotFound, response.ErrNotAssigned)
	case errors.Is(err, service.ErrClassInactive):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrClassInactive)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// GenerateCompanions godoc
// POST /api/v1/staff/classes/:id/companions/:date/generate
// Runs the grouping engine and stores the result on the draft. Can be
// repeated until the day is published.
func (h *CompanionsHandler) GenerateCompanions(c *gin.Context) {
	classID, date, ok := classAndDate(c)
	if !ok {
		return
	}

	var req model.GenerateCompanionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.companionsService.Generate(c.Request.Context(), classID, date, &req)
	if err != nil {
		failCompanions(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// LockGroups godoc
// PUT /api/v1/staff/classes/:id/companions/:date/locks
// Pins groups that every subsequent generation must keep intact.
func (h *CompanionsHandler) LockGroups(c *gin.Context) {
	classID, date, ok := classAndDate(c)
	if !ok {
		return
	}

	var req model.LockGroupsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	day, err := h.companionsService.Lock(c.Request.Context(), classID, date, req.LockedGroups)
	if err != nil {
		failCompanions(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"companion_day": day})
}

// PublishCompanions godoc
// POST /api/v1/staff/classes/:id/companions/:date/publish
// One-way Draft to Published transition. A repeated call returns 409.
func (h *CompanionsHandler) PublishCompanions(c *gin.Context) {
	classID, date, ok := classAndDate(c)
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	staffID := claims.UserID

	day, err := h.companionsService.Publish(c.Request.Context(), classID, date, &staffID, false)
	if err != nil {
		failCompanions(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"companion_day": day})
}

// GetCompanionDay godoc
// GET /api/v1/staff/classes/:id/companions/:date
// Full room map of a published day (staff view).
func (h *CompanionsHandler) GetCompanionDay(c *gin.Context) {
	classID, date, ok := classAndDate(c)
	if !ok {
		return
	}

	payload, err := h.companionsService.GetAllCompanions(c.Request.Context(), classID, date)
	if err != nil {
		failCompanions(c, err)
		return
	}

	response.Success(c, http.StatusOK, payload)
}

// PreviewRooms godoc
// POST /api/v1/staff/companions/rooms-preview
// Side-effect-free room numbering for an arbitrary set of groups.
func (h *CompanionsHandler) PreviewRooms(c *gin.Context) {
	var req model.RoomsPreviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rooms := h.companionsService.PreviewRooms(req.Groups, req.RoomStart)
	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

// RunAutoPublish godoc
// POST /api/v1/staff/companions/auto-publish/run?date=2025-03-09
// Triggers the auto-publish batch by hand, e.g. after a missed cron run.
// Defaults to today when no date is given.
func (h *CompanionsHandler) RunAutoPublish(c *gin.Context) {
	runDate := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidDate)
			return
		}
		runDate = parsed
	}

	report, err := h.companionsService.AutoPublishDue(c.Request.Context(), runDate)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}

// GetMyCompanions godoc
// GET /api/v1/student/companions/:date
// The authenticated student's room, companion names and meeting snapshot.
// Draft days are indistinguishable from missing ones.
func (h *CompanionsHandler) GetMyCompanions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	date, err := parseDate(c.Param("date"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidDate)
		return
	}

	view, err := h.companionsService.GetMyCompanions(c.Request.Context(), claims.UserID, date)
	if err != nil {
		// Students must not be able to tell a draft from a missing day.
		if errors.Is(err, service.ErrNotPublished) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		failCompanions(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}
