package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tahfidzid/mutqin-backend/internal/middleware"
	"github.com/tahfidzid/mutqin-backend/internal/model"
	"github.com/tahfidzid/mutqin-backend/internal/response"
	"github.com/tahfidzid/mutqin-backend/internal/service"
	"github.com/tahfidzid/mutqin-backend/internal/validator"
)

// DailyLogHandler handles setoran submission and verification.
type DailyLogHandler struct {
	logService *service.DailyLogService
}

// NewDailyLogHandler creates a new DailyLogHandler.
func NewDailyLogHandler(logService *service.DailyLogService) *DailyLogHandler {
	return &DailyLogHandler{logService: logService}
}

// SubmitDailyLog godoc
// POST /api/v1/student/daily-logs
// Records or replaces the authenticated student's log for one date.
// Resubmission resets the verified flag.
func (h *DailyLogHandler) SubmitDailyLog(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitDailyLogRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	logDate, err := parseDate(req.LogDate)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidDate)
		return
	}

	l := &model.DailyLog{
		StudentID: claims.UserID,
		LogDate:   logDate,
		Pages:     req.Pages,
	}

	if err := h.logService.Submit(c.Request.Context(), l); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"daily_log": l})
}

// VerifyDailyLog godoc
// POST /api/v1/staff/daily-logs/:id/verify
// Marks a log as verified by the authenticated staff member so it counts
// toward the commitment rate.
func (h *DailyLogHandler) VerifyDailyLog(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.logService.Verify(c.Request.Context(), id, claims.UserID); err != nil {
		if errors.Is(err, service.ErrDailyLogNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "daily log verified"})
}

// ListClassDailyLogs godoc
// GET /api/v1/staff/classes/:id/daily-logs?date=2025-03-10
func (h *DailyLogHandler) ListClassDailyLogs(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	date, err := parseDate(c.Query("date"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidDate)
		return
	}

	logs, err := h.logService.ListByClassAndDate(c.Request.Context(), classID, date)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"daily_logs": logs})
}
