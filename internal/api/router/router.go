package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"porest/backend/config"
	"porest/backend/internal/api/handler"
	"porest/backend/internal/api/middleware"
	"porest/backend/pkg/authz"
	"porest/backend/pkg/jwt"
	"porest/backend/pkg/metrics"
	"porest/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, enforcer *authz.Enforcer, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Middleware())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	// 页面权限
	can := func(page, action string) gin.HandlerFunc {
		return middleware.PageAuth(enforcer, page, action, logger)
	}
	read := authz.ActionRead
	write := authz.ActionWrite

	// ── API v1（全部需要认证） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	v1.Use(middleware.RateLimit(rdb, cfg.RateLimit, logger))
	{
		// 日历视图
		cal := v1.Group("/calendar", can(authz.PageCalendar, read))
		{
			cal.GET("/events", h.Calendar.Events)
			cal.GET("/categories", h.Calendar.Categories)
			cal.GET("/visibility", h.Calendar.Visibility)
			cal.POST("/visibility/reset", h.Calendar.ResetVisibility)
			cal.PUT("/visibility", h.Calendar.ToggleAll)
			cal.PUT("/visibility/users", h.Calendar.ToggleAllUsers)
			cal.PUT("/visibility/users/:id", h.Calendar.ToggleUser)
			cal.PUT("/visibility/calendars", h.Calendar.ToggleAllCalendars)
			cal.PUT("/visibility/calendars/:code", h.Calendar.ToggleCalendar)
		}

		// 甘特图
		gantt := v1.Group("/gantt", can(authz.PageGantt, read))
		{
			gantt.POST("/layout", h.Gantt.Layout)
			gantt.GET("/date-at", h.Gantt.DateAt)
		}

		// 日程（归属日历页面）
		schedules := v1.Group("/schedules")
		{
			schedules.GET("", can(authz.PageCalendar, read), h.Schedule.ListSchedules)
			schedules.GET("/export.ics", can(authz.PageCalendar, read), h.Schedule.ExportICS)
			schedules.GET("/:id", can(authz.PageCalendar, read), h.Schedule.GetSchedule)
			schedules.POST("", can(authz.PageCalendar, write), h.Schedule.CreateSchedule)
			schedules.PUT("/:id", can(authz.PageCalendar, write), h.Schedule.UpdateSchedule)
			schedules.DELETE("/:id", can(authz.PageCalendar, write), h.Schedule.DeleteSchedule)
		}

		// 年假
		vacation := v1.Group("/vacation")
		{
			vacation.GET("/summary", can(authz.PageVacation, read), h.Vacation.Summary)
			vacation.GET("/grants", can(authz.PageVacation, read), h.Vacation.ListGrants)
			vacation.POST("/grants", can(authz.PageVacation, write), h.Vacation.CreateGrant)
			vacation.DELETE("/grants/:id", can(authz.PageVacation, write), h.Vacation.DeleteGrant)
		}

		// 节假日
		holidays := v1.Group("/holidays")
		{
			holidays.GET("", can(authz.PageHoliday, read), h.Holiday.ListHolidays)
			holidays.GET("/:id", can(authz.PageHoliday, read), h.Holiday.GetHoliday)
			holidays.POST("", can(authz.PageHoliday, write), h.Holiday.CreateHoliday)
			holidays.POST("/sync", can(authz.PageHoliday, write), h.Holiday.SyncHolidays)
			holidays.PUT("/:id", can(authz.PageHoliday, write), h.Holiday.UpdateHoliday)
			holidays.DELETE("/:id", can(authz.PageHoliday, write), h.Holiday.DeleteHoliday)
		}

		// 会费
		dues := v1.Group("/dues")
		{
			dues.GET("", can(authz.PageDues, read), h.Dues.ListDues)
			dues.GET("/summary", can(authz.PageDues, read), h.Dues.Summary)
			dues.GET("/export", can(authz.PageDues, read), h.Dues.Export)
			dues.POST("", can(authz.PageDues, write), h.Dues.CreateDues)
			dues.PUT("/:id", can(authz.PageDues, write), h.Dues.UpdateDues)
			dues.DELETE("/:id", can(authz.PageDues, write), h.Dues.DeleteDues)
		}

		// 用户
		users := v1.Group("/users")
		{
			users.GET("/me", h.User.GetCurrentUser)
			users.GET("", can(authz.PageUser, read), h.User.ListUsers)
			users.GET("/:id", can(authz.PageUser, read), h.User.GetUser)
			users.POST("", can(authz.PageUser, write), h.User.CreateUser)
			users.POST("/import", can(authz.PageUser, write), h.User.ImportUsers)
			users.PUT("/:id", h.User.UpdateUser) // 管理员或本人（Service 层鉴权）
			users.DELETE("/:id", can(authz.PageUser, write), h.User.DeleteUser)
			users.PUT("/:id/role", can(authz.PageUser, write), h.User.AssignRole)
			users.POST("/:id/reset-password", can(authz.PageUser, write), h.User.ResetPassword)
		}

		// 公司 / 部门
		companies := v1.Group("/companies")
		{
			companies.GET("", can(authz.PageCompany, read), h.Company.ListCompanies)
			companies.GET("/:id", can(authz.PageCompany, read), h.Company.GetCompany)
			companies.GET("/:id/tree", can(authz.PageCompany, read), h.Company.GetTree)
			companies.POST("", can(authz.PageCompany, write), h.Company.CreateCompany)
			companies.PUT("/:id", can(authz.PageCompany, write), h.Company.UpdateCompany)
			companies.DELETE("/:id", can(authz.PageCompany, write), h.Company.DeleteCompany)
		}

		departments := v1.Group("/departments")
		{
			departments.GET("", can(authz.PageCompany, read), h.Department.ListDepartments)
			departments.GET("/:id", can(authz.PageCompany, read), h.Department.GetDepartment)
			departments.POST("", can(authz.PageCompany, write), h.Department.CreateDepartment)
			departments.PUT("/:id", can(authz.PageCompany, write), h.Department.UpdateDepartment)
			departments.DELETE("/:id", can(authz.PageCompany, write), h.Department.DeleteDepartment)
		}

		// 页面权限
		authorities := v1.Group("/authorities")
		{
			authorities.GET("/me", h.Authority.Mine)
			authorities.GET("", can(authz.PageAuthority, read), h.Authority.ListAuthorities)
			authorities.PUT("/:role", can(authz.PageAuthority, write), h.Authority.ReplaceAuthorities)
		}
	}

	return r
}
