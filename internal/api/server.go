package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cpperf/internal/service"
)

// Options configure the HTTP server.
type Options struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxUploadMB     int64
}

// Server exposes the calculation service over HTTP.
type Server struct {
	svc       *service.Service
	opts      Options
	maxUpload int64
	router    *gin.Engine
	logger    zerolog.Logger
}

// New builds the router. The service parameters are shared read-only.
func New(svc *service.Service, opts Options, logger zerolog.Logger) *Server {
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 32
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		svc:       svc,
		opts:      opts,
		maxUpload: opts.MaxUploadMB << 20,
		logger:    logger.With().Str("component", "api").Logger(),
	}

	router := gin.New()
	router.MaxMultipartMemory = s.maxUpload
	router.Use(recovery(s.logger))
	router.Use(requestLogger(s.logger))

	router.GET("/health", s.health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/params", s.params)
		v1.POST("/analyze", s.analyze)
	}

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, CodeNotFound, "Not found", nil)
	})

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.opts.ListenAddr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.opts.ListenAddr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api: %w", err)
	}
	return nil
}
