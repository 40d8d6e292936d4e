package server

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/axleworks/weighbridge-backend/internal/handlers"
	"github.com/axleworks/weighbridge-backend/internal/middleware"
	"github.com/axleworks/weighbridge-backend/internal/observability"
)

type RouterConfig struct {
	AuthMiddleware     *middleware.AuthMiddleware
	SessionHandler     *handlers.SessionHandler
	AxleProfileHandler *handlers.AxleProfileHandler
	SyncHandler        *handlers.SyncHandler

	AllowOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:80", "http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware("weighbridge"))
	router.Use(apiMetrics())

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.GET("/metrics", func(c *gin.Context) {
		observability.Current().WriteHTTP(c.Writer, c.Request)
	})

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Weighing sessions
	sessions := api.Group("/sessions")
	sessions.Use(cfg.AuthMiddleware.RequirePermission(middleware.PermOperate))
	sessions.POST("", cfg.SessionHandler.Open)
	sessions.POST("/:id/decks", cfg.SessionHandler.RecordDeck)
	sessions.POST("/:id/finalize", cfg.SessionHandler.Finalize)
	sessions.POST("/:id/cancel", cfg.SessionHandler.Cancel)
	sessions.GET("/:id", cfg.SessionHandler.Get)

	// Axle configuration
	vehicles := api.Group("/vehicles")
	vehicles.GET("/:id/axle-profile", cfg.AxleProfileHandler.Get)
	vehicles.PUT("/:id/axle-profile",
		cfg.AuthMiddleware.RequirePermission(middleware.PermConfigure),
		cfg.AxleProfileHandler.Replace)

	// Offline sync
	sync := api.Group("/sync")
	sync.Use(cfg.AuthMiddleware.RequirePermission(middleware.PermSync))
	sync.POST("/batches", cfg.SyncHandler.SubmitBatch)

	return router
}

func apiMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		m := observability.Current()
		m.ApiInflightInc()
		start := time.Now()
		c.Next()
		m.ApiInflightDec()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
