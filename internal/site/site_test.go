package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/caseblog/internal/cache"
	"github.com/dgallion1/caseblog/internal/content"
	"github.com/dgallion1/caseblog/internal/page"
	"github.com/dgallion1/caseblog/internal/portabletext"
	"github.com/dgallion1/caseblog/internal/warmer"
)

var _ warmer.Publisher = (*Site)(nil)

type memSource struct {
	mu      sync.Mutex
	posts   map[string]portabletext.Post
	fetches int
}

func (m *memSource) list() []portabletext.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []portabletext.Post
	for _, p := range m.posts {
		out = append(out, p)
	}
	return out
}

func (m *memSource) AllPosts(ctx context.Context) ([]portabletext.Post, error) { return m.list(), nil }

func (m *memSource) PostBySlug(ctx context.Context, slug string) (*portabletext.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	p, ok := m.posts[slug]
	if !ok {
		return nil, fmt.Errorf("post %q: %w", slug, content.ErrNotFound)
	}
	return &p, nil
}

func (m *memSource) AllSlugs(ctx context.Context) ([]string, error) {
	var out []string
	for _, p := range m.list() {
		out = append(out, p.Slug.Current)
	}
	return out, nil
}

func (m *memSource) RecentPosts(ctx context.Context, limit int) ([]portabletext.Post, error) {
	return m.list(), nil
}

func (m *memSource) RelatedPosts(ctx context.Context, slug string, categories []string, limit int) ([]portabletext.Post, error) {
	return nil, nil
}

func newSite(t *testing.T, src *memSource) (*Site, *cache.Store) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := cache.Open("", 0, log)
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	pages, err := page.New(src, page.Config{}, log)
	if err != nil {
		t.Fatalf("page.New: %v", err)
	}
	return New(src, pages, store, log), store
}

func samplePost(slug, title string) portabletext.Post {
	return portabletext.Post{
		Title: title,
		Slug:  portabletext.Slug{Current: slug},
		Body: portabletext.Document{{
			Kind: portabletext.KindText, Style: "normal",
			Children: []portabletext.Span{{Text: "Hello."}},
		}},
	}
}

func TestSite_PostCachesRender(t *testing.T) {
	src := &memSource{posts: map[string]portabletext.Post{"a": samplePost("a", "Alpha")}}
	s, _ := newSite(t, src)
	ctx := context.Background()

	first, err := s.Post(ctx, "a")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if !strings.Contains(string(first.Body), "<h1>Alpha</h1>") {
		t.Errorf("expected rendered title, got %s", first.Body)
	}
	second, err := s.Post(ctx, "a")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if second.ETag != first.ETag {
		t.Error("expected identical etag from cache")
	}
	if src.fetches != 1 {
		t.Errorf("expected one upstream fetch, got %d", src.fetches)
	}
}

func TestSite_PostNotFound(t *testing.T) {
	s, _ := newSite(t, &memSource{posts: map[string]portabletext.Post{}})
	_, err := s.Post(context.Background(), "nope")
	if !errors.Is(err, page.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestSite_RefreshPostEvictsRemoved(t *testing.T) {
	src := &memSource{posts: map[string]portabletext.Post{"a": samplePost("a", "Alpha")}}
	s, store := newSite(t, src)
	ctx := context.Background()

	if err := s.RefreshPost(ctx, "a"); err != nil {
		t.Fatalf("RefreshPost: %v", err)
	}
	if _, ok, _ := store.Get(cache.PostKey("a")); !ok {
		t.Fatal("expected post cached after refresh")
	}

	src.mu.Lock()
	delete(src.posts, "a")
	src.mu.Unlock()
	if err := s.RefreshPost(ctx, "a"); err != nil {
		t.Fatalf("RefreshPost after delete: %v", err)
	}
	if _, ok, _ := store.Get(cache.PostKey("a")); ok {
		t.Error("expected removed post to be evicted")
	}
}

func TestSite_RefreshIndexDropsFilters(t *testing.T) {
	p := samplePost("a", "Alpha")
	p.Categories = []string{"dog-bite"}
	src := &memSource{posts: map[string]portabletext.Post{"a": p}}
	s, store := newSite(t, src)
	ctx := context.Background()

	if _, err := s.Index(ctx, "dog-bite"); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := s.RefreshIndex(ctx); err != nil {
		t.Fatalf("RefreshIndex: %v", err)
	}
	if _, ok, _ := store.Get(cache.IndexKey("dog-bite")); ok {
		t.Error("expected filtered index dropped")
	}
	if _, ok, _ := store.Get(cache.IndexKey("")); !ok {
		t.Error("expected full index cached")
	}
}

func TestSite_Sitemap(t *testing.T) {
	src := &memSource{posts: map[string]portabletext.Post{"a": samplePost("a", "Alpha")}}
	s, _ := newSite(t, src)
	e, err := s.Sitemap(context.Background())
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	if !strings.HasPrefix(e.ContentType, "application/xml") || !strings.Contains(string(e.Body), "/blog/a</loc>") {
		t.Errorf("unexpected sitemap %s %s", e.ContentType, e.Body)
	}
	if err := s.Reload(context.Background()); err != nil {
		t.Errorf("Reload on a static source: %v", err)
	}
}

func TestSite_IndexUnknownCategoryNotCached(t *testing.T) {
	p := samplePost("a", "Alpha")
	p.Categories = []string{"dog-bite"}
	s, store := newSite(t, &memSource{posts: map[string]portabletext.Post{"a": p}})
	ctx := context.Background()

	e, err := s.Index(ctx, "no-such-category")
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if !strings.Contains(string(e.Body), "No blog posts found") {
		t.Errorf("expected empty state, got %s", e.Body)
	}
	if _, ok, _ := store.Get(cache.IndexKey("no-such-category")); ok {
		t.Error("expected unknown category to stay out of the cache")
	}
	if _, err := s.Index(ctx, "dog-bite"); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if _, ok, _ := store.Get(cache.IndexKey("dog-bite")); !ok {
		t.Error("expected known category cached")
	}
}
