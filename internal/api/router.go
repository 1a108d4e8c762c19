package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/library-api/internal/config"
	"github.com/library-api/internal/metrics"
	"github.com/library-api/internal/service"
)

const (
	serviceName        = "library-api"
	healthCheckTimeout = 2 * time.Second
)

// Database is the part of the store probed by /health and /stats
type Database interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, db Database, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(m.Middleware())
	router.Use(corsMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(otelgin.Middleware(serviceName))

	// Handlers
	articleHandler := NewArticleHandler(services, cfg, log)
	tagHandler := NewTagHandler(services, cfg, log)
	authorHandler := NewAuthorHandler(services, cfg, log)
	authHandler := NewAuthHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(db, log))
	router.GET("/stats", statsHandler(services, db, log))
	router.GET("/metrics", gin.WrapH(m.Handler()))

	api := router.Group("/api")
	api.Use(authMiddleware(services.Auth, log))
	{
		api.GET("/", apiRoot(cfg))

		articles := api.Group("/articles")
		{
			articles.GET("", articleHandler.List)
			articles.POST("", articleHandler.Create)
			articles.GET("/:id", articleHandler.Get)
			articles.PUT("/:id", articleHandler.Replace)
			articles.PATCH("/:id", articleHandler.Patch)
			articles.DELETE("/:id", articleHandler.Delete)
		}

		tags := api.Group("/tags")
		{
			tags.GET("", tagHandler.List)
			tags.POST("", tagHandler.Create)
			tags.GET("/:id", tagHandler.Get)
			tags.PUT("/:id", tagHandler.Update)
			tags.PATCH("/:id", tagHandler.Update)
			tags.DELETE("/:id", tagHandler.Delete)
			tags.GET("/:id/articles", articleHandler.ListByTag)
		}

		authors := api.Group("/authors")
		{
			authors.GET("", authorHandler.List)
			authors.POST("", authorHandler.Register)
			authors.GET("/:id", authorHandler.Get)
			authors.PUT("/:id", authorHandler.Replace)
			authors.PATCH("/:id", authorHandler.Patch)
			authors.DELETE("/:id", authorHandler.Delete)
			authors.GET("/:id/articles", articleHandler.ListByAuthor)
		}

		api.POST("/register", authorHandler.Register)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/me", authHandler.Me)
		}
	}

	return router
}

// healthCheck returns the health status, pinging the database
func healthCheck(db Database, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status, code := "healthy", http.StatusOK
		if err := db.HealthCheck(ctx); err != nil {
			log.Error().Err(err).Msg("Database health check failed")
			status, code = "unhealthy", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   serviceName,
		})
	}
}

// statsHandler returns stored record counts and connection pool usage
func statsHandler(services *service.Services, db Database, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := services.Stats.Counts(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}

		pool := db.Stats()
		c.JSON(http.StatusOK, gin.H{
			"database": stats,
			"pool": gin.H{
				"open_connections": pool.OpenConnections,
				"in_use":           pool.InUse,
				"idle":             pool.Idle,
				"wait_count":       pool.WaitCount,
				"wait_duration_ms": pool.WaitDuration.Milliseconds(),
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// apiRoot lists the collection endpoints
func apiRoot(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		links := newLinkBuilder(c, cfg)
		c.JSON(http.StatusOK, gin.H{
			"articles": links.collection("articles"),
			"tags":     links.collection("tags"),
			"authors":  links.collection("authors"),
		})
	}
}
