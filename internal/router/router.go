package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ngmvpwd/pakaya-sub001/internal/config"
	"github.com/ngmvpwd/pakaya-sub001/internal/handler"
	"github.com/ngmvpwd/pakaya-sub001/internal/middleware"
	"github.com/ngmvpwd/pakaya-sub001/internal/response"
	"github.com/ngmvpwd/pakaya-sub001/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Attendance *handler.AttendanceHandler
	Teacher    *handler.TeacherHandler
	Department *handler.DepartmentHandler
	Holiday    *handler.HolidayHandler
	Dashboard  *handler.DashboardHandler
	Backup     *handler.BackupHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve scheduled backup files statically with short-lived caching.
	backupsGroup := router.Group("/backups")
	backupsGroup.Use(middleware.RequireStaffJWT(authService), middleware.RequireAdmin(), middleware.CacheControl(60))
	{
		backupsGroup.Static("/", cfg.BackupDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireStaffJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Staff Group (JWT) ──────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireStaffJWT(authService))
	{
		// Attendance
		api.POST("/attendance", handlers.Attendance.Record)
		api.POST("/attendance/bulk", handlers.Attendance.BulkApply)
		api.GET("/attendance", handlers.Attendance.GetByDate)
		api.GET("/attendance/:teacher_id", handlers.Attendance.GetForTeacher)
		api.GET("/attendance/:teacher_id/history", handlers.Attendance.History)

		// Directories (read)
		api.GET("/teachers", handlers.Teacher.List)
		api.GET("/teachers/:id", handlers.Teacher.Get)
		api.GET("/departments", handlers.Department.List)
		api.GET("/holidays", handlers.Holiday.List)

		// Dashboard
		api.GET("/dashboard/stats", handlers.Dashboard.DailyStats)
		api.GET("/dashboard/alerts", handlers.Dashboard.RecentAlerts)
	}

	// ─── 3. Admin Group (JWT + role gate) ──────────────────────────────
	adminAPI := router.Group("/api/v1")
	adminAPI.Use(middleware.RequireStaffJWT(authService), middleware.RequireAdmin())
	{
		adminAPI.POST("/teachers", handlers.Teacher.Create)
		adminAPI.PUT("/teachers/:id", handlers.Teacher.Update)
		adminAPI.DELETE("/teachers/:id", handlers.Teacher.Delete)

		adminAPI.POST("/departments", handlers.Department.Create)
		adminAPI.PUT("/departments/:id", handlers.Department.Update)
		adminAPI.DELETE("/departments/:id", handlers.Department.Delete)

		adminAPI.POST("/holidays", handlers.Holiday.Create)
		adminAPI.DELETE("/holidays/:id", handlers.Holiday.Delete)

		adminAPI.GET("/backup/export", handlers.Backup.Export)
		adminAPI.POST("/backup/import", handlers.Backup.Import)
	}

	// ─── 4. WebSocket Group (WS Auth via query token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/stream", handlers.WS.Stream)
	}

	return router
}
