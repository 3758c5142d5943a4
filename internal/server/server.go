// Package server exposes the watermark engine over HTTP for upload pipelines
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/denysvitali/picmark/internal/store"
	"github.com/denysvitali/picmark/pkg/watermark"
)

// Config holds server settings
type Config struct {
	MaxUploadBytes int64
	Encode         watermark.EncodeOptions
}

// Server serves the watermark and probe endpoints
type Server struct {
	engine *watermark.Engine
	store  *store.Store
	base   watermark.Config
	config Config
	logger logrus.FieldLogger
	router *gin.Engine
}

// New creates a server. When st is non-nil the stored settings are merged
// over base as the starting point for every request.
func New(engine *watermark.Engine, st *store.Store, base watermark.Config, config Config, logger logrus.FieldLogger) *Server {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 32 << 20
	}

	s := &Server{
		engine: engine,
		store:  st,
		base:   base,
		config: config,
		logger: logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	SetupRoutes(r, s)
	s.router = r

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) baseConfig() watermark.Config {
	if s.store != nil {
		return s.store.LoadOver(s.base)
	}
	return s.base
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("logger", s.logger.WithField("request_id", requestID))
		c.Header("X-Request-ID", requestID)

		c.Next()

		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start),
		}).Info("Request handled")
	}
}

func loggerFrom(c *gin.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if l, ok := c.Get("logger"); ok {
		if fl, ok := l.(logrus.FieldLogger); ok {
			return fl
		}
	}
	return fallback
}
