package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corazon/gymtrack/internal/log"
	"github.com/corazon/gymtrack/internal/tracker"
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr    string
	Tracker *tracker.Tracker
}

// Server wraps an http.Server exposing the tracker as a JSON API.
type Server struct {
	config     Config
	httpServer *http.Server
}

// New builds a Server. The tracker is shared by every request; calls into it
// are serialized by the API handler.
func New(cfg Config) (*Server, error) {
	if cfg.Tracker == nil {
		return nil, fmt.Errorf("tracker is required")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("server address must not be empty")
	}
	log.Debug(context.Background(), "initializing server", "addr", cfg.Addr)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	NewAPIHandler(cfg.Tracker).SetupRoutes(router)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	log.Info(ctx, "server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info(shutdownCtx, "server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
