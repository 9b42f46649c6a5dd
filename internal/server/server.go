// Package server exposes the learning-path service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hitensaxena/pathfinder/internal/app"
	"github.com/hitensaxena/pathfinder/internal/logging"
)

// Server is the HTTP API. Every /api route is scoped to the owner named by
// the bearer token's subject.
type Server struct {
	app    *app.App
	auth   *Authenticator
	log    *logging.Logger
	engine *gin.Engine
}

// New builds the router. mode is the gin mode; empty keeps gin's default.
func New(a *app.App, auth *Authenticator, log *logging.Logger, mode string) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	s := &Server{
		app:    a,
		auth:   auth,
		log:    logging.OrNop(log).With("component", "http"),
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.accessLog(), a.Metrics.Middleware())
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(s.app.Metrics.Handler()))

	api := r.Group("/api", s.auth.middleware())
	{
		api.POST("/paths/generate", s.generatePath)
		api.POST("/paths", s.savePath)
		api.GET("/paths", s.listPaths)
		api.GET("/paths/:id", s.getPath)
		api.PATCH("/paths/:id", s.renamePath)
		api.DELETE("/paths/:id", s.deletePath)
		api.POST("/paths/:id/modules/:index/details", s.backfillModule)
		api.POST("/paths/:id/modules/:index/quiz", s.generateQuiz)
		api.POST("/paths/:id/modules/:index/quiz/submit", s.submitQuiz)
		api.GET("/videos", s.searchVideo)
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
// for up to shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// accessLog writes one structured line per request. Client errors log at
// info and server errors at error; everything else stays at debug.
func (s *Server) accessLog() gin.HandlerFunc {
	z := s.log.Zap()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := zapcore.DebugLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = zapcore.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zapcore.InfoLevel
		}
		if ce := z.Check(level, "request"); ce != nil {
			ce.Write(
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("owner", owner(c)),
			)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	llm := "ready"
	if err := s.app.LLMReady(); err != nil {
		llm = "unavailable"
	}
	video := "ready"
	if s.app.Video == nil {
		video = "unavailable"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "llm": llm, "video": video})
}
