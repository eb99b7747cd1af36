package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/clubselect/clubselect-api/api/swagger"
	"github.com/clubselect/clubselect-api/internal/handler"
	"github.com/clubselect/clubselect-api/internal/middleware"
	"github.com/clubselect/clubselect-api/internal/models"
	"github.com/clubselect/clubselect-api/internal/repository"
	"github.com/clubselect/clubselect-api/internal/service"
	"github.com/clubselect/clubselect-api/pkg/cache"
	"github.com/clubselect/clubselect-api/pkg/config"
	"github.com/clubselect/clubselect-api/pkg/database"
	"github.com/clubselect/clubselect-api/pkg/logger"
	corsmiddleware "github.com/clubselect/clubselect-api/pkg/middleware/cors"
	reqidmiddleware "github.com/clubselect/clubselect-api/pkg/middleware/requestid"
)

// @title ClubSelect API
// @version 1.0.0
// @description Club and course selection enrollment manager
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.MigrationsDir); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, embed cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories
	students := repository.NewStudentRepository(db)
	projects := repository.NewProjectRepository(db)
	courses := repository.NewCourseRepository(db)
	tags := repository.NewTagRepository(db)
	sections := repository.NewSectionRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	settings := repository.NewSettingRepository(db)
	admins := repository.NewAdminRepository(db)

	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}

	// Services
	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(admins, students, projects, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Expiration,
	})
	embedCfg := service.EmbedCacheConfig{Enabled: cfg.Embed.CacheEnabled && cacheRepo != nil, TTL: cfg.Embed.CacheTTL}
	var embedCache service.EmbedCache
	var invalidator service.CacheInvalidator
	if cacheRepo != nil {
		embedCache = cacheRepo
		invalidator = cacheRepo
	}
	projectService := service.NewProjectService(projects, students, courses, tags, sections, enrollments, submissions, embedCache, embedCfg, metricsService, logr)
	enrollmentService := service.NewEnrollmentService(enrollments, courses, students, validate, logr)
	submissionService := service.NewSubmissionService(submissions, projects, tags, courses, enrollments, students, invalidator, logr)
	adminProjectService := service.NewAdminProjectService(projects, students, validate, logr)
	courseService := service.NewCourseService(courses, projects, tags, sections, enrollments, validate, logr)
	tagService := service.NewTagService(tags, projects, validate, logr)
	sectionService := service.NewSectionService(sections, projects, validate, logr)
	settingService := service.NewSettingService(settings, validate, logr)
	definitionService := service.NewDefinitionService(projects, sections, tags, courses, logr)
	exportService := service.NewExportService(submissions, projects, enrollments, courses, invalidator, logr)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	studentHandler := handler.NewStudentHandler(projectService, enrollmentService, submissionService, metricsService)
	embedHandler := handler.NewEmbedHandler(projectService)
	adminProjectHandler := handler.NewAdminProjectHandler(adminProjectService, definitionService, exportService)
	adminCourseHandler := handler.NewAdminCourseHandler(courseService, tagService, sectionService)
	settingHandler := handler.NewSettingHandler(settingService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/validate", authHandler.ValidateToken)

		api.GET("/embed/projects/:id/status", embedHandler.Status)
		api.GET("/embed/status", embedHandler.Status)
		api.GET("/settings/:key", settingHandler.Get)

		student := api.Group("/student")
		student.Use(middleware.JWT(authService), middleware.RequireRoles(models.RoleStudent))
		{
			student.GET("/projects", studentHandler.ListProjects)
			student.GET("/projects/:id", studentHandler.GetProject)
			student.POST("/projects/:id/submit", studentHandler.Submit)
			student.POST("/enrollments", studentHandler.Enroll)
			student.DELETE("/enrollments/:courseId", studentHandler.Unenroll)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/projects", adminProjectHandler.List)
			admin.POST("/projects", adminProjectHandler.Create)
			admin.POST("/projects/import", adminProjectHandler.ImportDefinition)
			admin.GET("/projects/:id", adminProjectHandler.Get)
			admin.PUT("/projects/:id", adminProjectHandler.Update)
			admin.DELETE("/projects/:id", adminProjectHandler.Delete)
			admin.GET("/projects/:id/export", adminProjectHandler.ExportDefinition)

			admin.GET("/projects/:id/students", adminProjectHandler.ListStudents)
			admin.POST("/projects/:id/students", adminProjectHandler.BulkAddStudents)
			admin.DELETE("/projects/:id/students/:studentId", adminProjectHandler.RemoveStudent)

			admin.GET("/projects/:id/submissions/export", adminProjectHandler.ExportSubmissions)
			admin.DELETE("/projects/:id/submissions", adminProjectHandler.ClearSubmissions)

			admin.GET("/projects/:id/courses", adminCourseHandler.ListCourses)
			admin.POST("/projects/:id/courses", adminCourseHandler.CreateCourse)
			admin.GET("/courses/:courseId", adminCourseHandler.GetCourse)
			admin.PUT("/courses/:courseId", adminCourseHandler.UpdateCourse)
			admin.DELETE("/courses/:courseId", adminCourseHandler.DeleteCourse)

			admin.GET("/projects/:id/tags", adminCourseHandler.ListTags)
			admin.POST("/projects/:id/tags", adminCourseHandler.CreateTag)
			admin.PUT("/tags/:tagId", adminCourseHandler.UpdateTag)
			admin.DELETE("/tags/:tagId", adminCourseHandler.DeleteTag)

			admin.GET("/projects/:id/sections", adminCourseHandler.ListSections)
			admin.POST("/projects/:id/sections", adminCourseHandler.CreateSection)
			admin.PUT("/sections/:sectionId", adminCourseHandler.UpdateSection)
			admin.DELETE("/sections/:sectionId", adminCourseHandler.DeleteSection)

			admin.PUT("/settings/:key", settingHandler.Set)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
