package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/model"
	"github.com/crisiswatch/crisiswatch/internal/pipeline"
	"github.com/crisiswatch/crisiswatch/internal/trending"
)

// Server exposes the verification pipeline over HTTP: single and batch
// checks, a progress event stream, trending claims, health, and stats.
type Server struct {
	engine    *gin.Engine
	pipeline  *pipeline.Pipeline
	trends    *trending.Store
	cfg       model.ServerConfig
	logger    *zap.Logger
	startedAt time.Time
}

// New creates the HTTP server and registers its routes
func New(p *pipeline.Pipeline, trends *trending.Store, cfg model.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		engine:    engine,
		pipeline:  p,
		trends:    trends,
		cfg:       cfg,
		logger:    logger,
		startedAt: time.Now(),
	}

	engine.POST("/check", s.handleCheck)
	engine.POST("/check/batch", s.handleCheckBatch)
	engine.GET("/check/stream", s.handleCheckStream)
	engine.GET("/trending", s.handleTrending)
	engine.GET("/health", s.handleHealth)
	engine.GET("/stats", s.handleStats)

	return s
}

// Handler exposes the route tree, for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains connections within the
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("address", s.cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request in the service's structured format
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
