// Package api serves maps over HTTP.
//
// Routes:
//
//	GET    /healthz                       liveness and session count
//	POST   /render?format=svg             one-shot render of the posted scene (cached)
//	POST   /sessions                      upload a scene, start a view session
//	GET    /sessions/{id}/map.{format}    draw the session's map (svg or png)
//	GET    /sessions/{id}/labels          label bounds of the requested view
//	DELETE /sessions/{id}                 end a session
//
// View queries accept width, height, zoom, center and reuse, plus
// hide_labels, hide_ruler, hide_legends and hide_title. With reuse=true a
// session redraws the labels placed by its previous request, so panning a
// zoomed view does not reshuffle them.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cgmap/pkg/pipeline"
	"github.com/matzehuels/cgmap/pkg/session"
)

const (
	// DefaultMaxSceneBytes bounds uploaded scene documents.
	DefaultMaxSceneBytes = 8 << 20

	// DefaultRenderTimeout bounds one request's render.
	DefaultRenderTimeout = 30 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxSceneBytes bounds uploaded scene documents.
func WithMaxSceneBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSceneBytes = n
		}
	}
}

// WithDefaults sets the options requests start from before their query is
// applied.
func WithDefaults(o pipeline.Options) Option { return func(s *Server) { s.defaults = o } }

// Server holds the handlers' dependencies.
type Server struct {
	store  *session.Store
	runner *pipeline.Runner
	logger *log.Logger

	defaults      pipeline.Options
	maxSceneBytes int64
	renderTimeout time.Duration
}

// New returns a server using store for sessions and runner for drawing.
func New(store *session.Store, runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		store:         store,
		runner:        runner,
		logger:        log.NewWithOptions(io.Discard, log.Options{}),
		maxSceneBytes: DefaultMaxSceneBytes,
		renderTimeout: DefaultRenderTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Get("/map.{format}", s.handleMap)
			r.Get("/labels", s.handleLabels)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
