package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ngmvpwd/pakaya-sub001/internal/middleware"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
	"github.com/ngmvpwd/pakaya-sub001/internal/response"
	"github.com/ngmvpwd/pakaya-sub001/internal/service"
	"github.com/ngmvpwd/pakaya-sub001/internal/validator"
)

// AttendanceHandler handles attendance read and write endpoints.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// Record godoc
// POST /api/v1/attendance
// Records one teacher's status for a date. Resubmitting for the same
// teacher/date replaces the earlier record.
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req model.RecordAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	rec, err := h.attendanceService.Record(c.Request.Context(), req, claims.Username)
	if err != nil {
		h.failFromServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

// BulkApply godoc
// POST /api/v1/attendance/bulk
// Applies statuses to many teachers for one date. Failures are reported
// per target; the rest of the batch still commits.
func (h *AttendanceHandler) BulkApply(c *gin.Context) {
	var req model.BulkApplyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	result, err := h.attendanceService.ApplyBulk(c.Request.Context(), req, claims.Username)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetByDate godoc
// GET /api/v1/attendance?date=YYYY-MM-DD
// Lists every record for one date; defaults to today.
func (h *AttendanceHandler) GetByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format(model.DateFormat)
	}
	if _, err := time.Parse(model.DateFormat, date); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	records, err := h.attendanceService.GetForDate(c.Request.Context(), date)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"date": date, "records": records})
}

// GetForTeacher godoc
// GET /api/v1/attendance/:teacher_id?date=YYYY-MM-DD
// Returns the single record for a staff code and date, if any.
func (h *AttendanceHandler) GetForTeacher(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format(model.DateFormat)
	}
	if _, err := time.Parse(model.DateFormat, date); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	rec, err := h.attendanceService.GetForTeacherAndDate(c.Request.Context(), c.Param("teacher_id"), date)
	if err != nil {
		if errors.Is(err, service.ErrTeacherNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrTeacherNotFound)
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": rec})
}

// History godoc
// GET /api/v1/attendance/:teacher_id/history?from=YYYY-MM-DD&to=YYYY-MM-DD
// Lists a teacher's records for an inclusive date range; defaults to the
// last 30 days.
func (h *AttendanceHandler) History(c *gin.Context) {
	to := c.Query("to")
	if to == "" {
		to = time.Now().Format(model.DateFormat)
	}
	from := c.Query("from")
	if from == "" {
		from = time.Now().AddDate(0, 0, -30).Format(model.DateFormat)
	}
	for _, date := range []string{from, to} {
		if _, err := time.Parse(model.DateFormat, date); err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
	}
	if from > to {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	records, err := h.attendanceService.GetHistory(c.Request.Context(), c.Param("teacher_id"), from, to)
	if err != nil {
		if errors.Is(err, service.ErrTeacherNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrTeacherNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"from": from, "to": to, "records": records})
}

func (h *AttendanceHandler) failFromServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidStatus):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidStatus)
	case errors.Is(err, service.ErrInvalidCategory):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidCategory)
	case errors.Is(err, service.ErrTeacherNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrTeacherNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
