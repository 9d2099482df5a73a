package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
	"github.com/ngmvpwd/pakaya-sub001/internal/repository"
	"github.com/ngmvpwd/pakaya-sub001/internal/response"
	"github.com/ngmvpwd/pakaya-sub001/internal/service"
	"github.com/ngmvpwd/pakaya-sub001/internal/validator"
)

// DepartmentHandler handles department directory endpoints.
type DepartmentHandler struct {
	departmentService *service.DepartmentService
}

// NewDepartmentHandler creates a new DepartmentHandler.
func NewDepartmentHandler(departmentService *service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

// List godoc
// GET /api/v1/departments
func (h *DepartmentHandler) List(c *gin.Context) {
	departments, err := h.departmentService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"departments": departments})
}

// Create godoc
// POST /api/v1/departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req model.DepartmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	department, err := h.departmentService.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateDepartment) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"department": department})
}

// Update godoc
// PUT /api/v1/departments/:id
func (h *DepartmentHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.DepartmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	department, err := h.departmentService.Update(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, repository.ErrDuplicateDepartment):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"department": department})
}

// Delete godoc
// DELETE /api/v1/departments/:id
func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.departmentService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrDepartmentInUse) {
			response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "department deleted successfully"})
}
