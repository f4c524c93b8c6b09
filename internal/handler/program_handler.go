package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/tahfidzid/mutqin-backend/internal/model"
	"github.com/tahfidzid/mutqin-backend/internal/response"
	"github.com/tahfidzid/mutqin-backend/internal/service"
	"github.com/tahfidzid/mutqin-backend/internal/validator"
)

// ProgramHandler handles staff-facing tahfidz program management (CRUD).
type ProgramHandler struct {
	programService *service.ProgramService
}

// NewProgramHandler creates a new ProgramHandler.
func NewProgramHandler(programService *service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// ListPrograms godoc
// GET /api/v1/staff/programs
// Lists all programs without pagination.
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	programs, err := h.programService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"programs": programs})
}

// GetProgram godoc
// GET /api/v1/staff/programs/:id
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	program, err := h.programService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"program": program})
}

// CreateProgram godoc
// POST /api/v1/staff/programs
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req model.CreateProgramRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	program := &model.Program{
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}
	if req.Active != nil {
		program.Active = *req.Active
	}

	if err := h.programService.Create(c.Request.Context(), program); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"program": program})
}

// UpdateProgram godoc
// PUT /api/v1/staff/programs/:id
func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateProgramRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	program := &model.Program{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}
	if req.Active != nil {
		program.Active = *req.Active
	}

	if err := h.programService.Update(c.Request.Context(), program); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	// Fetch updated to get current updated_at timestamp
	updated, _ := h.programService.GetByID(c.Request.Context(), id)

	response.Success(c, http.StatusOK, gin.H{"program": updated})
}

// DeleteProgram godoc
// DELETE /api/v1/staff/programs/:id
// Fails if classes are still attached.
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.programService.Delete(c.Request.Context(), id); err != nil {
		if isForeignKeyViolation(err) {
			response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "program deleted successfully"})
}
