package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 15 * time.Second

// Server wraps net/http with context-driven graceful shutdown.
type Server struct {
	srv    *stdhttp.Server
	logger zerolog.Logger
}

func NewServer(addr string, handler stdhttp.Handler, logger zerolog.Logger) *Server {
	return &Server{
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger.With().Str("component", "http_server").Logger(),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.srv.Addr).Msg("listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
