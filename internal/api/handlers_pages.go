package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dgallion1/caseblog/internal/cache"
	"github.com/dgallion1/caseblog/internal/page"
	"github.com/go-chi/chi/v5"
)

const pageCacheControl = "public, max-age=300, stale-while-revalidate=3600"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	e, err := s.site.Index(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	writeEntry(w, r, e)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	e, err := s.site.Post(r.Context(), slug)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	writeEntry(w, r, e)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	e, err := s.site.Sitemap(r.Context())
	if err != nil {
		s.log.Error("sitemap failed", "error", err)
		http.Error(w, "sitemap unavailable", http.StatusInternalServerError)
		return
	}
	writeEntry(w, r, e)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderStatus(w, http.StatusNotFound, s.site.Pages().RenderNotFound)
}

// pageError maps a render failure to the 404 or 500 page.
func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, page.ErrNotFound) {
		s.handleNotFound(w, r)
		return
	}
	s.log.Error("page render failed", "path", r.URL.Path, "error", err)
	s.renderStatus(w, http.StatusInternalServerError, s.site.Pages().RenderError)
}

func (s *Server) renderStatus(w http.ResponseWriter, code int, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.log.Error("status page failed", "error", err)
		http.Error(w, http.StatusText(code), code)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

// writeEntry serves a cached page, answering conditional requests with 304.
func writeEntry(w http.ResponseWriter, r *http.Request, e *cache.Entry) {
	w.Header().Set("ETag", e.ETag)
	w.Header().Set("Cache-Control", pageCacheControl)
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, e.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", e.ContentType)
	w.Write(e.Body)
}

func etagMatches(header, etag string) bool {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "*" || strings.TrimPrefix(part, "W/") == etag {
			return true
		}
	}
	return false
}
