package httptransport

import (
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campusfeedback/backend/internal/auth"
	"campusfeedback/backend/internal/auth/jwt"
	"campusfeedback/backend/internal/config"
	"campusfeedback/backend/internal/health"
	"campusfeedback/backend/internal/middleware"
	"campusfeedback/backend/internal/monitoring"
	"campusfeedback/backend/internal/service"
)

// RouterDependencies 路由器依赖
type RouterDependencies struct {
	Config        *config.Config
	Mailboxes     *service.MailboxService
	Resets        *service.PasswordResetService
	Academic      *service.AcademicService
	Feedback      *service.FeedbackService
	Reports       *service.ReportService
	AuthService   *auth.Service
	JWTManager    *jwt.Manager
	HealthChecker *health.HealthChecker
	Metrics       *monitoring.Metrics
	Logger        *zap.Logger
}

// NewRouter 创建并配置 HTTP 路由器
func NewRouter(deps RouterDependencies) *gin.Engine {
	if !deps.Config.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	monitoringMW := middleware.NewMonitoringMiddleware(deps.Metrics, deps.Logger)

	// panic 恢复必须在最外层
	router.Use(monitoringMW.PanicRecovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodySizeLimit(middleware.DefaultBodyLimit))
	router.Use(monitoringMW.HTTPMetrics())
	router.Use(monitoringMW.RateLimitMetrics())
	router.Use(buildCORS(deps.Config.CORS))

	// 健康检查与指标
	router.GET("/live", gin.WrapH(deps.HealthChecker.Handler()))
	router.GET("/ready", gin.WrapH(deps.HealthChecker.Handler()))
	router.GET("/health", func(c *gin.Context) {
		Success(c, deps.HealthChecker.CheckHealth())
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))

	authHandler := NewAuthHandler(deps.AuthService, deps.JWTManager, deps.Logger)
	resetHandler := NewResetHandler(deps.Resets, deps.Logger)
	mailboxHandler := NewMailboxHandler(deps.Mailboxes, deps.Logger)
	academicHandler := NewAcademicHandler(deps.Academic, deps.Logger)
	feedbackHandler := NewFeedbackHandler(deps.Feedback, deps.Logger)
	reportHandler := NewReportHandler(deps.Reports, deps.Logger)

	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, deps.Logger)
	adminAuth := middleware.NewAdminAuth(deps.AuthService)

	v1 := router.Group("/v1")
	{
		// 管理端认证
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/me", jwtAuth.RequireAuth(), authHandler.Me)
		}

		// 密码重置（公开）
		resetGroup := v1.Group("/password-reset")
		{
			resetGroup.POST("/request", resetHandler.Request)
			resetGroup.POST("/confirm", resetHandler.Confirm)
		}

		// 反馈表单需要的公开数据
		v1.GET("/departments", academicHandler.ListDepartments)
		v1.GET("/schedules", academicHandler.ListSchedules)
		v1.POST("/feedback", feedbackHandler.Submit)

		// 管理端
		admin := v1.Group("/admin", jwtAuth.RequireAuth(), adminAuth.RequireAdmin())
		{
			admin.GET("/departments", academicHandler.ListDepartments)
			admin.POST("/departments", academicHandler.CreateDepartment)
			admin.GET("/departments/:id", academicHandler.GetDepartment)
			admin.PUT("/departments/:id", academicHandler.UpdateDepartment)
			admin.DELETE("/departments/:id", academicHandler.DeleteDepartment)

			admin.GET("/faculty", academicHandler.ListFaculty)
			admin.POST("/faculty", academicHandler.CreateFaculty)
			admin.PUT("/faculty/:id", academicHandler.UpdateFaculty)
			admin.DELETE("/faculty/:id", academicHandler.DeleteFaculty)

			admin.GET("/students", academicHandler.ListStudents)
			admin.POST("/students", academicHandler.CreateStudent)
			admin.DELETE("/students/:id", academicHandler.DeleteStudent)

			admin.GET("/subjects", academicHandler.ListSubjects)
			admin.POST("/subjects", academicHandler.CreateSubject)
			admin.DELETE("/subjects/:id", academicHandler.DeleteSubject)

			admin.GET("/schedules", academicHandler.ListSchedules)
			admin.POST("/schedules", academicHandler.CreateSchedule)
			admin.DELETE("/schedules/:id", academicHandler.DeleteSchedule)

			admin.GET("/feedback/:scheduleId", feedbackHandler.ListBySchedule)

			admin.GET("/reports/subjects", reportHandler.SubjectReports)
			admin.GET("/reports/faculty", reportHandler.FacultyReports)
			admin.GET("/reports/departments", reportHandler.DepartmentReports)
			admin.GET("/reports/export/:kind", reportHandler.ExportCSV)

			// 邮箱池管理仅限超级管理员
			superOnly := admin.Group("", adminAuth.RequireSuper())
			{
				superOnly.GET("/mailboxes", mailboxHandler.Status)
				superOnly.POST("/mailboxes", mailboxHandler.Create)
				superOnly.PATCH("/mailboxes/:id/active", mailboxHandler.SetActive)
				superOnly.GET("/mailboxes/stats", mailboxHandler.EmailStats)
			}
		}
	}

	return router
}

// buildCORS 根据配置构建 CORS 中间件
//
// 允许所有来源时必须关闭凭据共享，否则浏览器会拒绝响应。
func buildCORS(cfg config.CORSConfig) gin.HandlerFunc {
	corsConfig := gincors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	allowAll := false
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}

	if allowAll {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}

	return gincors.New(corsConfig)
}
