package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"swim-admin/config"
	"swim-admin/internal/api/handler"
	"swim-admin/internal/api/middleware"
	"swim-admin/internal/model"
	"swim-admin/pkg/jwt"
	"swim-admin/pkg/redis"
)

const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
	// 学员 xlsx 上传
	maxBodyBytes = 5 << 20
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil（Redis 未启用），此时跳过黑名单与限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, st middleware.ModeReporter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// nil 指针不能直接作为接口传入
	var (
		checker middleware.TokenChecker
		limiter middleware.Limiter
	)
	if rdb != nil {
		checker, limiter = rdb, rdb
	}

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))
	r.Use(middleware.DemoMode(st))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "demo_mode": st.IsDemoMode()})
	})

	management := middleware.RoleAuth(model.RoleAdmin, model.RoleLeader)
	adminOnly := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(limiter, loginRateLimit, loginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, checker, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 人员模块
			users := authorized.Group("/users")
			{
				users.GET("", management, h.User.ListUsers)
				users.GET("/:id", management, h.User.GetUser)
				users.POST("", adminOnly, h.User.CreateUser)
				users.PUT("/:id", adminOnly, h.User.UpdateUser)
				users.DELETE("/:id", adminOnly, h.User.DeleteUser)
				users.POST("/:id/reset-password", adminOnly, h.User.ResetPassword)
			}

			// 课程模块（列表按可见性过滤）
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/titles", h.Course.ListTitles)
				courses.POST("/titles", management, h.Course.AddTitle)
				courses.GET("/:id", h.Course.GetCourse)
				courses.POST("", management, h.Course.CreateCourse)
				courses.PUT("/:id", management, h.Course.UpdateCourse)
				courses.DELETE("/:id", management, h.Course.DeleteCourse)
				courses.POST("/:id/duplicate", management, h.Course.DuplicateCourse)
				courses.POST("/:id/sessions/:sid/confirm", management, h.Course.ConfirmSession)
				courses.GET("/:id/staffing", h.Course.GetStaffing)
				courses.GET("/:id/finance", management, h.Course.GetFinance)
				courses.POST("/:id/participants/:pid/payment-confirmation", management, h.Course.PaymentConfirmation)
				courses.POST("/:id/participants/import", management, h.Course.ImportParticipants)
				courses.POST("/:id/attendance/dispatch", management, h.Automation.Dispatch)
			}

			// 换班模块（审批权限在 Service 层按课程负责人判断）
			swaps := authorized.Group("/swaps")
			{
				swaps.POST("", h.Swap.CreateRequest)
				swaps.GET("/mine", h.Swap.ListMine)
				swaps.GET("/pending", h.Swap.ListPending)
				swaps.POST("/:id/approve", h.Swap.Approve)
				swaps.POST("/:id/reject", h.Swap.Reject)
			}

			// 自动提醒
			automation := authorized.Group("/automation")
			{
				automation.GET("/due", management, h.Automation.ListDue)
				automation.GET("/tomorrow", h.Automation.Tomorrow)
			}

			// 看板
			dashboard := authorized.Group("/dashboard", adminOnly)
			{
				dashboard.GET("/critical-sessions", h.Dashboard.CriticalSessions)
				dashboard.GET("/finance", h.Dashboard.Finance)
			}

			// 导出
			export := authorized.Group("/export")
			{
				export.GET("/calendar", h.Export.ExportCalendar)
				export.GET("/courses/:id/attendance", management, h.Export.ExportAttendance)
			}
		}
	}

	return r
}
