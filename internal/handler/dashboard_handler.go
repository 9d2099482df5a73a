package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
	"github.com/ngmvpwd/pakaya-sub001/internal/response"
	"github.com/ngmvpwd/pakaya-sub001/internal/service"
)

// DashboardHandler handles dashboard statistics endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// DailyStats godoc
// GET /api/v1/dashboard/stats?date=YYYY-MM-DD
// Returns one day's attendance counts; defaults to today.
func (h *DashboardHandler) DailyStats(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format(model.DateFormat)
	}
	if _, err := time.Parse(model.DateFormat, date); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	stats, err := h.dashboardService.DailyStats(c.Request.Context(), date)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// RecentAlerts godoc
// GET /api/v1/dashboard/alerts?limit=20
func (h *DashboardHandler) RecentAlerts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	alerts, err := h.dashboardService.RecentAlerts(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"alerts": alerts})
}
