package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"lora/internal"
)

// NewDebugRouter exposes net/http/pprof under /debug.
func NewDebugRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Mount("/debug", middleware.Profiler())
	return r
}

// Server runs the API and, when enabled, the profiling listener.
type Server struct {
	api    *http.Server
	debug  *http.Server
	logger *internal.Logger
}

// NewServer wraps handler on addr. An empty debugAddr disables profiling.
func NewServer(addr string, handler http.Handler, debugAddr string, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		api: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.With("server"),
	}
	if debugAddr != "" {
		s.debug = &http.Server{
			Addr:              debugAddr,
			Handler:           NewDebugRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}
	return s
}

// Run serves until ctx is cancelled or a listener fails, then shuts every
// listener down.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	servers := []*http.Server{s.api}
	if s.debug != nil {
		servers = append(servers, s.debug)
	}
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			s.logger.Info("listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var firstErr error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		s.logger.Info("shut down")
		return firstErr
	})

	return g.Wait()
}
