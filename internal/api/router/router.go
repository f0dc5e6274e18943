package router

import (
	"github.com/cuongbtq/job-tracker/internal/api/handler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())
	r.Use(MetricsMiddleware())

	healthHandler := handler.NewHealthHandler(deps)
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logHandler := handler.NewLogHandler(deps)

	logs := r.Group("/api/logs")
	{
		// POST /api/logs - Record one activity entry
		logs.POST("", logHandler.CreateLog)

		// GET /api/logs - List entries with filtering and pagination
		logs.GET("", logHandler.ListLogs)

		// GET /api/logs/stats - Aggregate counts
		logs.GET("/stats", logHandler.GetStats)

		// POST /api/logs/bulk - Queue a batch for the worker service
		logs.POST("/bulk", logHandler.BulkImport)

		// GET /api/logs/:id - Get one entry
		logs.GET("/:id", logHandler.GetLog)

		// DELETE /api/logs/:id - Delete one entry
		logs.DELETE("/:id", logHandler.DeleteLog)
	}

	return r
}
