package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cine-insights/config"
	"cine-insights/logging"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server
const ShutdownTimeout = 10 * time.Second

// Server runs the API as a supervised service
type Server struct {
	server *http.Server
}

func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{server: &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}}
}

// Serve listens until ctx is cancelled, then shuts the server down gracefully
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		logging.Info().Msg("HTTP server stopped")
		return ctx.Err()
	}
}

func (s *Server) String() string {
	return "http-server"
}
