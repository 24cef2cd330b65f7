// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/freshbasket/storefront/internal/config"
	"github.com/freshbasket/storefront/internal/interfaces/http/middleware"
	"github.com/freshbasket/storefront/internal/interfaces/http/routes"
	"github.com/freshbasket/storefront/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// HealthChecker is a dependency the health endpoint pings
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Dependencies are what the server mounts
type Dependencies struct {
	Handlers routes.Handlers
	Tokens   *auth.JWTManager
	Live     http.Handler
	Redis    *redis.Client
	Checks   map[string]HealthChecker
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     *logrus.Logger
	deps       Dependencies
	gin        *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer creates a new HTTP server instance with its routes mounted
func NewServer(cfg *config.Config, logger *logrus.Logger, deps Dependencies) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		logger:    logger,
		deps:      deps,
		gin:       gin.New(),
		startedAt: time.Now(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start serves until Stop is called
func (s *Server) Start() error {
	log.Printf("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	log.Printf("🌐 API Base URL: http://localhost:%s/api/v1", s.config.Server.Port)
	log.Printf("📡 Live events: ws://localhost:%s/ws", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Println("🛑 Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	log.Println("✅ HTTP server stopped gracefully")
	return nil
}

func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.CORS(s.config.Security))
	s.gin.Use(middleware.SecurityHeaders())
}

func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	if s.deps.Live != nil {
		s.gin.GET("/ws", gin.WrapH(s.deps.Live))
	}

	apiV1 := s.gin.Group("/api/v1")
	if s.deps.Redis != nil && s.config.Security.RateLimitPerMinute > 0 {
		apiV1.Use(middleware.RateLimit(s.deps.Redis, s.config.Security.RateLimitPerMinute, s.logger))
	}
	apiV1.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodyBytes))
	apiV1.Use(middleware.Timeout(s.config.Server.RequestTimeout))

	routes.SetupRoutes(apiV1, s.deps.Handlers, s.deps.Tokens)
}

// healthCheck pings every dependency
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	for name, check := range s.deps.Checks {
		if err := check.Health(ctx); err != nil {
			s.logger.WithError(err).WithField("dependency", name).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  name + " ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck reports that routes are mounted
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).String(),
	})
}
