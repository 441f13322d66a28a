package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"rickmorty/viewer/internal/config"
	"rickmorty/viewer/internal/httpserver/deps"
	"rickmorty/viewer/internal/httpserver/handlers"
	"rickmorty/viewer/internal/httpserver/mw"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Server wraps the HTTP server that renders the character pages.
type Server struct {
	http *http.Server
}

// NewRouter builds the router with middlewares and all routes.
func NewRouter(d deps.Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(mw.Log(d.Metrics))

	r.Get("/", handlers.Page(d))
	r.With(mw.RateLimit(d.LoadMoreLimiter)).Post("/load-more", handlers.LoadMore(d))
	r.Post("/characters/{id}/select", handlers.Select(d))
	r.Post("/back", handlers.Back(d))
	r.With(mw.RateLimit(d.LoadMoreLimiter)).Post("/reset", handlers.Reset(d))

	r.Get("/api/state", handlers.State(d))
	r.Get("/healthz", handlers.Healthz(d))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	return r
}

func New(cfg config.ServerConfig, d deps.Deps) *Server {
	s := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{http: s}
}

func (s *Server) Addr() string {
	return s.http.Addr
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	log.Infof("🌐 HTTP server listening on http://%s", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	log.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
