// Package http serves the ledger's JSON API on top of the entry store.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"financeiro/internal/log"
	"financeiro/internal/middleware/ratelimit"
	"financeiro/internal/middleware/security"
	"financeiro/internal/pipeline"
	"financeiro/internal/store"
)

const defaultMaxImportBytes = 5 << 20

// Config tunes the HTTP surface.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	MaxImportBytes     int64
	TrustedProxies     []string
}

// Server owns the HTTP server, its router and the background routines of
// its middleware.
type Server struct {
	http.Server

	store    *store.Store
	memo     *pipeline.Memo
	logger   *log.Logger
	events   *log.StructuredLogger
	limiter  *ratelimit.Limiter
	clientIP *security.ClientIP
	rt       *chi.Mux

	maxImportBytes int64
	now            func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(st *store.Store, memo *pipeline.Memo, logger *log.Logger, cfg Config) (*Server, error) {
	if cfg.MaxImportBytes <= 0 {
		cfg.MaxImportBytes = defaultMaxImportBytes
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	clientIP := security.NewClientIP()
	for _, cidr := range cfg.TrustedProxies {
		if err := clientIP.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	r := chi.NewRouter()
	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		store:          st,
		memo:           memo,
		logger:         logger,
		events:         log.NewStructuredLogger(logger),
		limiter:        ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		clientIP:       clientIP,
		rt:             r,
		maxImportBytes: cfg.MaxImportBytes,
		now:            time.Now,
	}

	r.Use(chimw.RequestID)
	r.Use(log.Middleware(logger))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string { return chimw.GetReqID(r.Context()) }))
	r.Use(s.requestLogger)
	r.Use(s.recoverer)
	r.Use(metricsMiddleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	s.routes()
	return s, nil
}

// Router exposes the configured handler.
func (s *Server) Router() http.Handler { return s.rt }

func (s *Server) routes() {
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())

	s.rt.Route("/v1", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.clientIP.Extract, func(w http.ResponseWriter, _ *http.Request) {
			writeErr(w, http.StatusTooManyRequests, "rate limit exceeded", "rate_limited")
		}))

		r.Get("/entries", s.listEntries)
		r.Post("/entries", s.createEntry)
		r.Patch("/entries/{id}", s.updateEntry)
		r.Delete("/entries/{id}", s.deleteEntry)
		r.Post("/entries/{id}/toggle-status", s.toggleStatus)

		r.Get("/categories", s.categories)
		r.Get("/summary", s.summary)
		r.Get("/charts/monthly-costs", s.monthlyCosts)
		r.Get("/charts/monthly-balance", s.monthlyBalance)
		r.Get("/charts/by-description", s.byDescription)

		r.Get("/export", s.exportEntries)
		r.Post("/import", s.importEntries)
		r.Get("/template", s.template)
	})

	s.rt.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusNotFound, "route not found", "not_found")
	})
	s.rt.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
	})
}

// Close stops the background routines without touching the listener.
func (s *Server) Close() {
	s.shutdownOnce.Do(s.limiter.Stop)
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Close()
	return s.Server.Shutdown(ctx)
}

// ListenAndServe serves until Shutdown; a clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ready(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		writeErr(w, http.StatusServiceUnavailable, "store unavailable", "store_unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
