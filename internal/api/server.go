package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/caseblog/internal/config"
	"github.com/dgallion1/caseblog/internal/sanity"
	"github.com/dgallion1/caseblog/internal/site"
	"github.com/dgallion1/caseblog/internal/warmer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the blog and its admin API.
type Server struct {
	router   chi.Router
	site     *site.Site
	warmer   *warmer.Orchestrator
	upstream *sanity.Stats
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. upstream may be nil when
// content is served from a local directory.
func NewServer(st *site.Site, w *warmer.Orchestrator, upstream *sanity.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		site:     st,
		warmer:   w,
		upstream: upstream,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/blog", http.StatusMovedPermanently)
	})
	r.Get("/blog", s.handleIndex)
	r.Get("/blog/{slug}", s.handlePost)
	r.Get("/sitemap.xml", s.handleSitemap)
	r.NotFound(s.handleNotFound)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.AdminAPIKey, s.log))

		r.Post("/api/preview", s.handlePreview)
		r.Post("/api/revalidate", s.handleRevalidate)
		r.Get("/api/revalidate/{jobID}/status", s.handleRevalidateStatus)
		r.Get("/api/stats/upstream", s.handleUpstreamStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
