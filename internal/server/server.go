// Package server exposes the conversion service over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"

	"github.com/jmylchreest/detag/internal/history"
	"github.com/jmylchreest/detag/internal/logger"
	"github.com/jmylchreest/detag/pkg/detag"
)

//go:embed static
var staticFiles embed.FS

// Server serves the conversion endpoints and the upload page.
type Server struct {
	cfg     Config
	detag   *detag.Detag
	history history.Store
	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithHistory records every conversion request in store.
func WithHistory(store history.Store) Option {
	return func(s *Server) {
		s.history = store
	}
}

// New validates cfg and builds the handler tree.
func New(cfg Config, d *detag.Detag, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New("server: nil converter")
	}

	s := &Server{
		cfg:     cfg,
		detag:   d,
		history: history.NewNopStore(),
	}
	for _, opt := range opts {
		opt(s)
	}

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("server: static files: %w", err)
	}
	s.handler = s.routes(static)
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.HistoryRetention > 0 {
		if n, err := s.history.Cleanup(ctx, s.cfg.HistoryRetention); err != nil {
			logger.Warn("history cleanup failed", "error", err)
		} else if n > 0 {
			logger.Info("history cleanup", "removed", n)
		}
	}

	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("server listening",
		"addr", ln.Addr().String(),
		"max_upload", formatBytes(s.cfg.MaxUploadBytes()),
		"origins", s.cfg.AllowedOrigins)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("server shutting down", "grace", s.cfg.ShutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
