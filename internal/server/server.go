// Package server exposes the conversion pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mailforge/internal/config"
	"mailforge/internal/convert"
	"mailforge/internal/logging"
)

// Server wraps the gin engine and the HTTP listener around a Converter.
type Server struct {
	converter  *convert.Converter
	cfg        *config.Config
	engine     *gin.Engine
	httpServer *http.Server
	logger     logging.Logger
	metrics    *metrics
	startTime  time.Time
}

// New builds a Server with routing, CORS, and middleware configured.
func New(cfg *config.Config, converter *convert.Converter, logger logging.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Requested-With"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		converter: converter,
		cfg:       cfg,
		engine:    engine,
		logger:    logging.OrNop(logger),
		metrics:   newMetrics(nil),
		startTime: time.Now(),
	}

	engine.Use(s.requestLogger())
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/convert", s.handleConvert)

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Listening on %s", s.cfg.ListenAddr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the underlying handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data: healthResponse{
			Status: "ok",
			Uptime: time.Since(s.startTime).String(),
		},
	})
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}
