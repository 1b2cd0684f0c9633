package router

import (
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"ludilens/internal/analyzer"
	"ludilens/internal/handlers"
	"ludilens/internal/query"
	"ludilens/internal/store"
	"ludilens/internal/tracker"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}
func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(429, "Too many requests. Try again later.")
}

// Deps are the wired components the routes are served from.
type Deps struct {
	Registry *tracker.Registry
	Store    store.EventStore
	Analyzer *analyzer.Analyzer
	Engine   *query.Engine
}

func Setup(log *zap.Logger, deps Deps) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	// Handlers and routes
	eventsHandler := handlers.NewEventsHandler(log, deps.Registry)
	analysisHandler := handlers.NewAnalysisHandler(log, deps.Analyzer)
	queryHandler := handlers.NewQueryHandler(log, deps.Engine)
	reportsHandler := handlers.NewReportsHandler(log, deps.Store)
	experimentsHandler := handlers.NewExperimentsHandler(log)
	exportHandler := handlers.NewExportHandler(log, deps.Analyzer)

	// Ingestion is the hot path; cap per-client throughput so one runaway
	// game client cannot starve the rest.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Second,
		Limit: 200,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.POST("/events", limiter, eventsHandler.TrackDecision)

	sessionRoutes := router.Group("/sessions")
	{
		sessionRoutes.POST("/:id/flush", eventsHandler.Flush)
		sessionRoutes.POST("/:id/stop", eventsHandler.StopSession)
		sessionRoutes.GET("/:id/summary", eventsHandler.SessionSummary)
	}

	router.POST("/query", queryHandler.Run)

	analysisRoutes := router.Group("/analysis")
	{
		analysisRoutes.GET("/patterns", analysisHandler.Patterns)
		analysisRoutes.GET("/profile/:userID", analysisHandler.Profile)
		analysisRoutes.GET("/profile/:userID/game/:gameID", analysisHandler.GameProfile)
		analysisRoutes.GET("/transfer", analysisHandler.Transfer)
	}

	reportRoutes := router.Group("/reports")
	{
		reportRoutes.GET("/mastery", reportsHandler.MasteryTimeline)
		reportRoutes.GET("/transfer", reportsHandler.TransferScatter)
	}

	experimentRoutes := router.Group("/experiments")
	{
		experimentRoutes.POST("", experimentsHandler.Create)
		experimentRoutes.GET("", experimentsHandler.List)
		experimentRoutes.GET("/:id", experimentsHandler.Get)
		experimentRoutes.POST("/:id/status", experimentsHandler.UpdateStatus)
	}

	router.POST("/export", exportHandler.Create)

	return router
}
