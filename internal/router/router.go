package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tahfidzid/mutqin-backend/internal/config"
	"github.com/tahfidzid/mutqin-backend/internal/handler"
	"github.com/tahfidzid/mutqin-backend/internal/middleware"
	"github.com/tahfidzid/mutqin-backend/internal/response"
	"github.com/tahfidzid/mutqin-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Program    *handler.ProgramHandler
	Class      *handler.ClassHandler
	Student    *handler.StudentHandler
	DailyLog   *handler.DailyLogHandler
	Companions *handler.CompanionsHandler
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

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for student submissions (60 requests per minute per IP).
	submitLimiter := middleware.NewRateLimiter(60, time.Minute)

	// ─── 1. Student Group (JWT) ─────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/companions/:date", handlers.Companions.GetMyCompanions)
		studentAPI.POST("/daily-logs", submitLimiter.Middleware(), handlers.DailyLog.SubmitDailyLog)
	}

	// ─── 2. WebSocket Group (Staff WS Auth) ─────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStaffWSAuth(authService))
	{
		ws.GET("/staff/companions/stream", handlers.WS.CompanionsStream)
	}

	// ─── 3. Staff Group (JWT) ───────────────────────────────────────────
	staffAPI := router.Group("/api/v1/staff")
	staffAPI.Use(middleware.RequireStaffJWT(authService))
	{
		// Program management
		staffAPI.GET("/programs", handlers.Program.ListPrograms)
		staffAPI.GET("/programs/:id", handlers.Program.GetProgram)
		staffAPI.POST("/programs", handlers.Program.CreateProgram)
		staffAPI.PUT("/programs/:id", handlers.Program.UpdateProgram)
		staffAPI.DELETE("/programs/:id", handlers.Program.DeleteProgram)

		// Class (halaqah) management
		staffAPI.GET("/classes", handlers.Class.ListClasses)
		staffAPI.GET("/classes/:id", handlers.Class.GetClass)
		staffAPI.POST("/classes", handlers.Class.CreateClass)
		staffAPI.PUT("/classes/:id", handlers.Class.UpdateClass)
		staffAPI.DELETE("/classes/:id", handlers.Class.DeleteClass)

		// Student (santri) management
		staffAPI.GET("/students", handlers.Student.ListStudents)
		staffAPI.GET("/students/:id", handlers.Student.GetStudent)
		staffAPI.POST("/students", handlers.Student.CreateStudent)
		staffAPI.PUT("/students/:id", handlers.Student.UpdateStudent)
		staffAPI.DELETE("/students/:id", handlers.Student.DeleteStudent)

		// Daily log verification
		staffAPI.POST("/daily-logs/:id/verify", handlers.DailyLog.VerifyDailyLog)
		staffAPI.GET("/classes/:id/daily-logs", handlers.DailyLog.ListClassDailyLogs)

		// Companions engine
		staffAPI.POST("/classes/:id/companions/:date/generate", handlers.Companions.GenerateCompanions)
		staffAPI.PUT("/classes/:id/companions/:date/locks", handlers.Companions.LockGroups)
		staffAPI.POST("/classes/:id/companions/:date/publish", handlers.Companions.PublishCompanions)
		staffAPI.GET("/classes/:id/companions/:date", handlers.Companions.GetCompanionDay)
		staffAPI.POST("/companions/rooms-preview", handlers.Companions.PreviewRooms)
		staffAPI.POST("/companions/auto-publish/run", handlers.Companions.RunAutoPublish)
	}

	return router
}
