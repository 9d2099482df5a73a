package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
	"github.com/ngmvpwd/pakaya-sub001/internal/repository"
	"github.com/ngmvpwd/pakaya-sub001/internal/response"
	"github.com/ngmvpwd/pakaya-sub001/internal/service"
	"github.com/ngmvpwd/pakaya-sub001/internal/validator"
)

// HolidayHandler handles holiday calendar endpoints.
type HolidayHandler struct {
	holidayService *service.HolidayService
}

// NewHolidayHandler creates a new HolidayHandler.
func NewHolidayHandler(holidayService *service.HolidayService) *HolidayHandler {
	return &HolidayHandler{holidayService: holidayService}
}

// List godoc
// GET /api/v1/holidays
func (h *HolidayHandler) List(c *gin.Context) {
	holidays, err := h.holidayService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"holidays": holidays})
}

// Create godoc
// POST /api/v1/holidays
func (h *HolidayHandler) Create(c *gin.Context) {
	var req model.HolidayRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	holiday, err := h.holidayService.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateHoliday) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"holiday": holiday})
}

// Delete godoc
// DELETE /api/v1/holidays/:id
func (h *HolidayHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.holidayService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "holiday deleted successfully"})
}
