package main

import (
	"github.com/gin-gonic/gin"
	accounthandlers "github.com/jgirmay/inquizzitive/internal/accounts/handlers"
	analyticshandlers "github.com/jgirmay/inquizzitive/internal/analytics/handlers"
	commonhandlers "github.com/jgirmay/inquizzitive/internal/common/handlers"
	"github.com/jgirmay/inquizzitive/internal/common/health"
	"github.com/jgirmay/inquizzitive/internal/common/middleware"
	quizhandlers "github.com/jgirmay/inquizzitive/internal/quiz/handlers"
	"github.com/jgirmay/inquizzitive/internal/realtime"
)

const version = "1.0.0"

// setupRouter builds the gin engine with every route the server exposes
func setupRouter(app *App) *gin.Engine {
	if app.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(app.Log))
	router.Use(middleware.LoggerMiddleware(app.Log.Named("http")))
	router.Use(middleware.CORSMiddleware(app.Config.Server.AllowedOrigins))
	router.Use(app.Metrics.Middleware())

	commonhandlers.NewHealthHandler(health.NewHealthChecker(app.DB, version)).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	accountHandler := accounthandlers.NewAccountHandler(app.Accounts, app.Config.IsProduction())
	accountHandler.RegisterPublicRoutes(v1)

	// The websocket handler authenticates from the query string itself.
	realtime.NewHandler(app.Hub, app.Auth).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthRequired(app.Auth))
	{
		accountHandler.RegisterRoutes(protected)
		generateLimit := middleware.NewRateLimiter(app.Config.Generator.RatePerMinute, app.Config.Generator.RateBurst)
		quizhandlers.NewQuizHandler(app.Quizzes).WithGenerateLimit(generateLimit).RegisterRoutes(protected)
		analyticshandlers.NewAnalyticsHandler(app.Analytics).RegisterRoutes(protected)
	}

	return router
}
