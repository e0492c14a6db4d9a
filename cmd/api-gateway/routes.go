package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-results-api/internal/handler"
	"github.com/noah-isme/sma-results-api/internal/middleware"
	"github.com/noah-isme/sma-results-api/internal/models"
	"github.com/noah-isme/sma-results-api/internal/service"
	"github.com/noah-isme/sma-results-api/pkg/config"
	"github.com/noah-isme/sma-results-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-results-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-results-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	results     *handler.ResultHandler
	reportCards *handler.ReportCardHandler
	classes     *handler.ClassHandler
	schools     *handler.SchoolHandler
	terms       *handler.TermHandler
	students    *handler.StudentHandler
	health      *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, tokens *service.TokenService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.health.Health)
	r.GET("/ready", h.health.Ready)
	r.GET("/metrics", h.health.Prometheus)
	r.GET("/metrics/summary", h.health.Summary)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	// Download tokens carry their own signature and are shared with parents by link.
	api.GET("/report-cards/download/:token", h.reportCards.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	admin := middleware.RequireRoles(models.RoleAdmin)

	results := secured.Group("/results")
	results.GET("", h.results.List)
	results.GET("/statistics", staff, h.results.Statistics)
	results.GET("/student/:studentId", h.results.ListByStudent)
	results.GET("/class/:className", staff, h.results.ListByClass)
	results.GET("/class/:className/export", admin, h.classes.Export)
	results.POST("/class/:className/generate-reports", admin, h.classes.GenerateReports)
	results.POST("", staff, h.results.Create)
	results.POST("/bulk-create", admin, h.results.BulkCreate)
	results.POST("/calculate-positions", admin, h.classes.CalculatePositions)
	results.GET("/:id", h.results.Get)
	results.GET("/:id/report-card", h.reportCards.Link)
	results.PUT("/:id/subjects/:index", staff, h.results.UpdateSubject)
	results.PUT("/:id/attendance", staff, h.results.UpdateAttendance)
	results.PUT("/:id/behavior", staff, h.results.UpdateBehavior)
	results.PUT("/:id/comments", staff, h.results.UpdateComments)
	results.PUT("/:id/activities", staff, h.results.UpdateActivities)
	results.PUT("/:id/next-term", staff, h.results.UpdateNextTerm)
	results.POST("/:id/generate-report", staff, h.reportCards.Generate)
	results.PUT("/:id/publish-report", staff, h.reportCards.Publish)
	results.PUT("/:id/unpublish-report", staff, h.reportCards.Unpublish)
	results.PUT("/:id/archive", admin, h.reportCards.Archive)

	schools := secured.Group("/schools")
	schools.POST("", middleware.RequireRoles(models.RoleSuperAdmin), h.schools.Create)
	schools.GET("/current", h.schools.Current)
	schools.PUT("/current/grading-system", admin, h.schools.UpdateGradingSystem)
	schools.PUT("/current/policy", admin, h.schools.UpdatePolicy)
	schools.POST("/current/academic-year", admin, h.schools.StartAcademicYear)

	terms := secured.Group("/terms")
	terms.GET("", h.terms.List)
	terms.GET("/active", h.terms.GetActive)
	terms.POST("", admin, h.terms.Create)
	terms.POST("/:id/activate", admin, h.terms.Activate)

	students := secured.Group("/students")
	students.GET("", staff, h.students.List)
	students.GET("/:id", staff, h.students.Get)
	students.POST("", admin, h.students.Create)

	return r
}
