// Package site serves assembled pages through the render cache and refreshes
// them for the warmer.
package site

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/dgallion1/caseblog/internal/cache"
	"github.com/dgallion1/caseblog/internal/content"
	"github.com/dgallion1/caseblog/internal/page"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeXML  = "application/xml; charset=utf-8"
)

// Site renders pages on cache miss and stores the result.
type Site struct {
	src   content.Source
	pages *page.Assembler
	cache *cache.Store
	log   *slog.Logger
}

func New(src content.Source, pages *page.Assembler, store *cache.Store, log *slog.Logger) *Site {
	return &Site{src: src, pages: pages, cache: store, log: log}
}

// Pages exposes the assembler for status pages and previews.
func (s *Site) Pages() *page.Assembler {
	return s.pages
}

// CacheStats reports render cache traffic.
func (s *Site) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Post returns the cached post page, rendering it on a miss. A missing post
// yields page.ErrNotFound.
func (s *Site) Post(ctx context.Context, slug string) (*cache.Entry, error) {
	return s.cached(cache.PostKey(slug), func() (*cache.Entry, error) {
		return s.renderPost(ctx, slug)
	})
}

// Index returns the cached listing for category ("" or "all" for every post).
func (s *Site) Index(ctx context.Context, category string) (*cache.Entry, error) {
	return s.cached(cache.IndexKey(category), func() (*cache.Entry, error) {
		return s.renderIndex(ctx, category)
	})
}

// Sitemap returns the cached sitemap.xml.
func (s *Site) Sitemap(ctx context.Context) (*cache.Entry, error) {
	return s.cached(cache.SitemapKey, func() (*cache.Entry, error) {
		return s.renderSitemap(ctx)
	})
}

func (s *Site) cached(key string, render func() (*cache.Entry, error)) (*cache.Entry, error) {
	e, ok, err := s.cache.Get(key)
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "error", err)
	}
	if ok {
		return e, nil
	}
	return render()
}

func (s *Site) renderPost(ctx context.Context, slug string) (*cache.Entry, error) {
	p, err := s.pages.Post(ctx, slug)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.pages.RenderPost(&buf, p); err != nil {
		return nil, err
	}
	return s.store(cache.PostKey(slug), contentTypeHTML, buf.Bytes())
}

func (s *Site) renderIndex(ctx context.Context, category string) (*cache.Entry, error) {
	p, err := s.pages.Index(ctx, category)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.pages.RenderIndex(&buf, p); err != nil {
		return nil, err
	}
	// Unknown categories come straight from the query string; keep them out
	// of the cache.
	if p.Active != "" && len(p.Cards) == 0 {
		return &cache.Entry{ContentType: contentTypeHTML, ETag: cache.ETag(buf.Bytes()), Body: buf.Bytes()}, nil
	}
	return s.store(cache.IndexKey(category), contentTypeHTML, buf.Bytes())
}

func (s *Site) renderSitemap(ctx context.Context) (*cache.Entry, error) {
	body, err := s.pages.Sitemap(ctx)
	if err != nil {
		return nil, err
	}
	return s.store(cache.SitemapKey, contentTypeXML, body)
}

// store caches body. A cache write failure is logged and the page is still
// served.
func (s *Site) store(key, contentType string, body []byte) (*cache.Entry, error) {
	e, err := s.cache.Set(key, contentType, body)
	if err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
		return &cache.Entry{ContentType: contentType, ETag: cache.ETag(body), Body: body}, nil
	}
	return e, nil
}

// Reload refreshes sources that keep content in memory.
func (s *Site) Reload(ctx context.Context) error {
	if r, ok := s.src.(content.Reloader); ok {
		return r.Reload(ctx)
	}
	return nil
}

// Slugs lists every published post.
func (s *Site) Slugs(ctx context.Context) ([]string, error) {
	return s.src.AllSlugs(ctx)
}

// RefreshPost re-renders a post. A post that no longer exists is evicted.
func (s *Site) RefreshPost(ctx context.Context, slug string) error {
	_, err := s.renderPost(ctx, slug)
	if errors.Is(err, page.ErrNotFound) {
		s.log.Info("post removed, evicting", "slug", slug)
		return s.cache.Delete(cache.PostKey(slug))
	}
	return err
}

// RefreshIndex drops every filtered listing and re-renders the full one.
func (s *Site) RefreshIndex(ctx context.Context) error {
	if err := s.cache.DeletePrefix(cache.IndexPrefix); err != nil {
		return err
	}
	_, err := s.renderIndex(ctx, "")
	return err
}

// RefreshSitemap re-renders sitemap.xml.
func (s *Site) RefreshSitemap(ctx context.Context) error {
	_, err := s.renderSitemap(ctx)
	return err
}
