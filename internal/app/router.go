package app

import (
	"homeschool_lms_backend/docs"
	"homeschool_lms_backend/internal/config"
	"homeschool_lms_backend/internal/middleware"
	"homeschool_lms_backend/internal/model"
	"homeschool_lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerAuthedRoutes(authGroup, c)
		a.registerGuardianRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/login", c.auth.Login)
		public.GET("/roles", c.auth.ListRoles)

		public.GET("/catalog", c.catalog.GetCatalog)
		public.GET("/catalog/subjects", c.catalog.ListSubjects)
		public.GET("/catalog/grades", c.catalog.ListGrades)
		public.GET("/catalog/lessons", c.catalog.ListLessons)
		public.GET("/catalog/lessons/:id", c.catalog.GetLesson)
	}
}

// registerAuthedRoutes 任意已登录角色可用的接口
func (a *App) registerAuthedRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/auth/me", c.auth.Me)

	rg.GET("/dashboard", c.dashboard.GetDashboard)

	rg.GET("/progress", c.progress.GetState)
	rg.GET("/progress/overall", c.progress.GetOverall)
	rg.GET("/progress/subjects/:id", c.progress.GetSubjectProgress)
	rg.GET("/progress/categories/:subjectId/:categoryId", c.progress.GetCategoryProgress)
	rg.GET("/progress/grades/:id", c.progress.GetGradeProgress)
	rg.GET("/progress/attendance", c.progress.GetAttendance)
	rg.GET("/progress/lessons/:id", c.progress.GetLessonMetrics)
	rg.GET("/progress/next-lesson", c.progress.GetNextLesson)
	rg.GET("/progress/focus", c.progress.GetFocus)
	rg.GET("/progress/achievements", c.progress.GetAchievements)

	// 学习端上报
	rg.POST("/progress/lessons/:id/attempts", c.progress.RecordAttempt)
	rg.POST("/progress/lessons/:id/complete", c.progress.MarkComplete)

	rg.GET("/schedule", c.schedule.GetWeekly)
	rg.GET("/schedule/today", c.schedule.GetToday)

	rg.GET("/goals/:subjectId", c.goal.GetGoal)
}

// registerGuardianRoutes 监护人与教师才能使用的管理接口
func (a *App) registerGuardianRoutes(rg *gin.RouterGroup, c *controllers) {
	guardian := rg.Group("")
	guardian.Use(middleware.RoleMiddleware(model.Parent, model.Teacher))
	{
		guardian.POST("/schedule", c.schedule.AddItem)
		guardian.PATCH("/schedule/:id", c.schedule.UpdateItem)
		guardian.DELETE("/schedule/:id", c.schedule.RemoveItem)

		guardian.PUT("/goals/:subjectId", c.goal.SetGoal)

		guardian.PUT("/progress/lessons/:id/grade", c.progress.SetGrade)
		guardian.DELETE("/progress/lessons/:id", c.progress.ResetLesson)
		guardian.DELETE("/progress", c.progress.ResetAll)
	}

	parent := rg.Group("")
	parent.Use(middleware.RoleMiddleware(model.Parent))
	{
		parent.GET("/children", c.user.GetChildren)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users/:id", c.user.GetUser)
	}
}
