// Package server exposes SR document rendering over HTTP. Clients post a
// DICOM SR object and receive its content tree as indented text, XML or
// HTML.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/caio-sobreiro/dicomsr/dicom"
	"github.com/caio-sobreiro/dicomsr/interfaces"
	"github.com/caio-sobreiro/dicomsr/services"
	"github.com/caio-sobreiro/dicomsr/sr"
)

// DefaultMaxUploadBytes bounds the request body when no limit is set.
const DefaultMaxUploadBytes = 32 << 20

const shutdownTimeout = 10 * time.Second

// Option configures a Server instance.
type Option func(*Server)

// WithLogger overrides the logger used by the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithReadTimeout sets the read timeout for client connections.
func WithReadTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.ReadTimeout = timeout
	}
}

// WithWriteTimeout sets the write timeout for client connections.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.WriteTimeout = timeout
	}
}

// WithMaxUploadBytes limits the size of posted objects.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		s.MaxUploadBytes = n
	}
}

// WithReadFlags sets the flags used to read posted documents.
func WithReadFlags(flags sr.ReadFlags) Option {
	return func(s *Server) {
		s.ReadFlags = flags
	}
}

// WithRegistry sets the registry constraint checkers are looked up in.
func WithRegistry(registry *services.Registry) Option {
	return func(s *Server) {
		s.Registry = registry
	}
}

// WithCodec replaces the decoder for posted objects.
func WithCodec(codec interfaces.DatasetCodec) Option {
	return func(s *Server) {
		s.Codec = codec
	}
}

// Server renders posted SR documents.
type Server struct {
	Logger         *slog.Logger
	ReadTimeout    time.Duration // Read timeout for connections (default: none)
	WriteTimeout   time.Duration // Write timeout for connections (default: none)
	MaxUploadBytes int64
	ReadFlags      sr.ReadFlags
	Registry       *services.Registry
	Codec          interfaces.DatasetCodec

	router chi.Router
}

// New builds a Server and its routes.
func New(opts ...Option) *Server {
	srv := &Server{
		MaxUploadBytes: DefaultMaxUploadBytes,
		Codec:          dicom.Part10Codec{},
	}
	for _, opt := range opts {
		opt(srv)
	}
	if srv.Registry == nil {
		srv.Registry = services.DefaultRegistry()
	}
	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.logger()))

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/render/{format}", s.handleRender)

	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe listens on the given address and serves until the context is done or an error occurs.
func ListenAndServe(ctx context.Context, address string, opts ...Option) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	defer listener.Close()

	srv := New(opts...)
	return srv.Serve(ctx, listener)
}

// Serve accepts connections from listener until ctx is cancelled or an
// unrecoverable error occurs. In-flight requests are drained on shutdown.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if listener == nil {
		return errors.New("dsrserver: listener is required")
	}
	if s == nil || s.router == nil {
		return errors.New("dsrserver: server is not initialized")
	}

	logger := s.logger()
	httpSrv := &http.Server{
		Handler:      s,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(listener)
	}()

	logger.Info("SR render server listening",
		"address", listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Shutdown incomplete", "error", err)
	}
	<-errCh
	return ctx.Err()
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
