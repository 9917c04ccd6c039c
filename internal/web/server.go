// Package web provides the HTTP host for the grid validation engine.
//
// Every engine operation is exposed as a JSON endpoint under /api. Requests
// sent by HTMX (HX-Request: true) get rendered partials instead of JSON for
// validation reports and errors.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/JonMunkholm/gridcheck/internal/config"
	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/logging"
	"github.com/JonMunkholm/gridcheck/internal/schema"
	gridmw "github.com/JonMunkholm/gridcheck/internal/web/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SchemaReloader reloads grid schemas on demand. *schema.Loader satisfies it.
type SchemaReloader interface {
	Load() (schema.LoadResult, error)
}

// Options carries the optional collaborators of a Server.
type Options struct {
	// Metrics is mounted at cfg.Metrics.Path when non-nil and enabled.
	Metrics http.Handler

	// Schemas enables POST /api/schemas/reload when non-nil.
	Schemas SchemaReloader

	// OnReload is called after a reload triggered over HTTP.
	OnReload func(schema.LoadResult, error)
}

// Server is the HTTP server for the grid engine.
type Server struct {
	service *core.Service
	cfg     *config.Config
	opts    Options
	router  *chi.Mux
	server  *http.Server

	limiters []*rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, opts Options) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		opts:    opts,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	sc := cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(gridmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(gridmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled && s.cfg.Rate.RequestsPerMinute > 0 {
		s.router.Use(s.newLimiter(s.cfg.Rate.RequestsPerMinute).middleware(s))
	}
}

func (s *Server) newLimiter(perMinute int) *rateLimiter {
	rl := newRateLimiter(perMinute, time.Minute)
	s.limiters = append(s.limiters, rl)
	return rl
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)

	if s.opts.Metrics != nil && s.cfg.Metrics.Enabled {
		s.router.Method(http.MethodGet, s.cfg.Metrics.Path, s.opts.Metrics)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(gridmw.APIKeyAuth(&s.cfg.Security))
		r.Use(gridmw.Session)

		// Grid definitions
		r.Get("/grids", s.handleListGrids)
		r.Get("/grids/{gridKey}", s.handleGetGrid)

		// Validation runs are bounded separately from the global limit
		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled && s.cfg.Rate.ValidateLimit > 0 {
				r.Use(s.newLimiter(s.cfg.Rate.ValidateLimit).middleware(s))
			}
			r.Post("/validate", s.handleValidateInline)
			r.Post("/validate/{gridKey}", s.handleValidate)
		})

		// Filters
		r.Post("/filter/{gridKey}", s.handleFilter)

		// Paste
		r.Post("/paste/{gridKey}", s.handlePasteCell)
		r.Post("/paste/{gridKey}/rows", s.handlePasteRows)
		r.Post("/export/{gridKey}", s.handleExportText)

		// Engine state
		r.Get("/status", s.handleStatus)
		r.Delete("/session", s.handleForgetSession)

		if s.opts.Schemas != nil {
			r.Post("/schemas/reload", s.handleReloadSchemas)
		}
	})
}

// Start begins listening for HTTP requests. It returns nil once
// Shutdown has been called, including a Shutdown that came first.
func (s *Server) Start() error {
	logging.FromContext(context.Background()).Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and its rate limiters.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Close()
	return s.server.Shutdown(ctx)
}

// Close stops background goroutines without touching the listener.
func (s *Server) Close() {
	for _, rl := range s.limiters {
		rl.close()
	}
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
