// Package web serves an agent's static web interface. It is operational
// convenience around a chi router: a directory of prebuilt assets, an
// index.html fallback for client-side routes and graceful shutdown driven by
// context cancellation.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hermes-ai/hermes/logging"
)

// Options configures the web interface server.
type Options struct {
	// Addr is the listen address (defaults to ":8000").
	Addr string

	// Directory holds the static assets (defaults to "web_interface").
	Directory string

	// Logger receives request and lifecycle logs (defaults to NoOp).
	Logger logging.Logger

	// ShutdownTimeout bounds graceful shutdown (defaults to 5s).
	ShutdownTimeout time.Duration
}

// Server hosts the static web interface.
type Server struct {
	opts Options
}

// NewServer constructs a Server with defaults.
func NewServer(optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:            ":8000",
		Directory:       "web_interface",
		Logger:          logging.NoOpLogger{},
		ShutdownTimeout: 5 * time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Server{opts: opts}
}

// Handler returns the chi router serving the static directory with an
// index.html fallback for unknown paths.
func (s *Server) Handler() (http.Handler, error) {
	info, err := os.Stat(s.opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("web interface directory %s: %w", s.opts.Directory, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("web interface path %s is not a directory", s.opts.Directory)
	}

	fileServer := http.FileServer(http.Dir(s.opts.Directory))
	index := filepath.Join(s.opts.Directory, "index.html")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		path := filepath.Join(s.opts.Directory, filepath.Clean(strings.TrimPrefix(req.URL.Path, "/")))
		if _, err := os.Stat(path); err == nil {
			fileServer.ServeHTTP(w, req)
			return
		}
		// Client-side routed paths fall back to the index page.
		http.ServeFile(w, req, index)
	})

	return r, nil
}

// Serve runs the server until the context is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("web.serve.start", "addr", s.opts.Addr, "dir", s.opts.Directory)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	s.opts.Logger.Info("web.serve.shutdown", "addr", s.opts.Addr)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web interface shutdown: %w", err)
	}

	return <-errCh
}
