package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"gocloud.dev/blob"

	"github.com/ytget/yt-web-downloader/internal/download"
	"github.com/ytget/yt-web-downloader/internal/metrics"
	"github.com/ytget/yt-web-downloader/internal/model"
)

// ShutdownTimeout bounds graceful shutdown in Run.
const ShutdownTimeout = 10 * time.Second

// Files is the read side of the file library.
type Files interface {
	List(ctx context.Context) ([]model.FileEntry, error)
	NewReader(ctx context.Context, name string) (*blob.Reader, error)
}

// Options configures a Server.
type Options struct {
	Downloads download.Downloader
	Files     Files
	Metrics   *metrics.Metrics // optional; /metrics is not mounted without it
	Logger    *log.Logger
	Debug     bool

	// RequestsPerSecond and Burst limit requests per client address.
	// Zero RequestsPerSecond disables limiting.
	RequestsPerSecond float64
	Burst             int

	// ServeBytesPerSecond throttles file downloads. Zero is unlimited.
	ServeBytesPerSecond int64
}

// Server routes HTTP requests to the download service and file library.
type Server struct {
	downloads download.Downloader
	files     Files
	metrics   *metrics.Metrics
	logger    *log.Logger
	debug     bool
	limiter   *clientLimiter
	serveRate int64
	mux       *http.ServeMux
}

// New builds a Server with all routes registered.
func New(opts Options) (*Server, error) {
	if opts.Downloads == nil {
		return nil, errors.New("server: downloads is required")
	}
	if opts.Files == nil {
		return nil, errors.New("server: files is required")
	}

	s := &Server{
		downloads: opts.Downloads,
		files:     opts.Files,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		debug:     opts.Debug,
		serveRate: opts.ServeBytesPerSecond,
		mux:       http.NewServeMux(),
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if opts.RequestsPerSecond > 0 {
		s.limiter = newClientLimiter(opts.RequestsPerSecond, opts.Burst)
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.handle("GET /{$}", s.limit(http.HandlerFunc(s.handleIndex)))
	s.handle("POST /download", s.limit(http.HandlerFunc(s.handleStartDownload)))
	s.handle("GET /status/{id}", s.limit(http.HandlerFunc(s.handleStatus)))
	s.handle("GET /files", s.limit(http.HandlerFunc(s.handleListFiles)))
	s.handle("GET /downloads/{filename}", s.limit(http.HandlerFunc(s.handleServeFile)))
	s.handle("GET /healthz", http.HandlerFunc(s.handleHealth))
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// handle registers h wrapped in logging and metrics under pattern.
func (s *Server) handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, s.instrument(pattern, h))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
