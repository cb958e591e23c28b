package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"Profile_1.0/backend/go/internal/config"
	"Profile_1.0/backend/go/internal/models"
	"Profile_1.0/backend/go/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Server wraps the standard http.Server with a context driven lifecycle.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *logger.Logger
}

// ServerOption defines a function for configuring a Server.
type ServerOption func(*Server)

// WithAddress sets the address for the server to listen on.
func WithAddress(addr string) ServerOption {
	return func(s *Server) {
		s.httpServer.Addr = addr
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *logger.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests on stop.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// NewServer creates a Server serving handler, configured from cfg.
func NewServer(cfg *config.AppConfig, handler http.Handler, opts ...ServerOption) *Server {
	srv := &Server{
		httpServer: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
			ReadHeaderTimeout: cfg.Server.ReadTimeoutDuration(),
			WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
		},
		shutdownTimeout: cfg.Server.ShutdownTimeoutDuration(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	if srv.httpServer.Addr == "" {
		srv.httpServer.Addr = fmt.Sprintf(":%d", config.DefaultPort)
	}
	if srv.logger == nil {
		srv.logger = logger.New(cfg.App.Name, "")
	}
	return srv
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info("Starting server on " + s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on l.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Starting server on " + l.Addr().String())
	return s.httpServer.Serve(l)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Run serves on l until ctx is cancelled, then shuts down within the shutdown timeout.
// If l is nil the server listens on its configured address.
func (s *Server) Run(ctx context.Context, l net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if l != nil {
			err = s.Serve(l)
		} else {
			err = s.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Server forced to shutdown")
			return err
		}
		s.logger.Info("Server gracefully stopped")
		return nil
	})

	return g.Wait()
}
