package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shodhmemory/engine/internal/engine"
	"github.com/shodhmemory/engine/internal/logging"
	"github.com/shodhmemory/engine/internal/ratelimit"
	"github.com/shodhmemory/engine/pkg/config"
)

// Server is the engine's REST API surface.
type Server struct {
	router     *gin.Engine
	engine     *engine.Engine
	cfg        config.Config
	httpServer *http.Server
	log        *logging.Logger
}

// NewServer wires the HTTP surface around an already-constructed
// engine: CORS, API-key auth, rate limiting, body-size limiting, and
// every route in the external-interface table.
func NewServer(eng *engine.Engine, cfg config.Config) *Server {
	log := logging.GetLogger("api")

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.RestAPI.CORS {
		corsConfig := cors.Config{
			AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
			ExposeHeaders: []string{"Content-Length", "Retry-After"},
			MaxAge:        12 * time.Hour,
		}
		if cfg.RestAPI.APIKey != "" {
			corsConfig.AllowOrigins = []string{
				"http://localhost:*",
				"http://127.0.0.1:*",
				"https://localhost:*",
				"https://127.0.0.1:*",
			}
			corsConfig.AllowWildcard = true
		} else {
			corsConfig.AllowAllOrigins = true
		}
		router.Use(cors.New(corsConfig))
	}

	if cfg.RestAPI.APIKey != "" {
		log.Info("API key authentication enabled")
		router.Use(APIKeyAuthMiddleware(cfg.RestAPI.APIKey))
	}

	if cfg.RateLimit.Enabled {
		log.Info("rate limiting enabled")
		limiter := ratelimit.NewLimiter(cfg.RateLimit, prometheus.DefaultRegisterer)
		router.Use(RateLimitMiddleware(limiter))
	}

	router.Use(MaxBodySizeMiddleware(DefaultBodyLimit))

	s := &Server{
		router: router,
		engine: eng,
		cfg:    cfg,
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	api := s.router.Group("/api")
	{
		api.POST("/remember", s.rememberHandler)
		api.POST("/record", s.recordHandler)
		api.POST("/recall", s.recallHandler)
		api.POST("/retrieve", s.retrieveHandler)
		api.POST("/proactive_context", s.proactiveContextHandler)
		api.GET("/memory/:id", s.getMemoryHandler)
		api.DELETE("/memory/:id", s.deleteMemoryHandler)
		api.GET("/users/:id/stats", s.userStatsHandler)
	}
}

// Router exposes the underlying gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the HTTP server until it errors or is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.RestAPI.Host, s.cfg.RestAPI.Port)
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}
	s.log.Info("starting REST API server", "address", addr)
	return s.httpServer.ListenAndServe()
}

// StartWithContext runs the server and gracefully shuts it down when
// ctx is cancelled, bounding the shutdown by shutdownTimeout.
func (s *Server) StartWithContext(ctx context.Context, shutdownTimeout time.Duration) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.RestAPI.Host, s.cfg.RestAPI.Port)
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("starting REST API server", "address", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.log.Info("stopping REST API server")
	return s.httpServer.Shutdown(ctx)
}
