package content

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/caseblog/internal/importer"
	"github.com/dgallion1/caseblog/internal/portabletext"
	"github.com/dgallion1/caseblog/internal/sanity"
)

// frontMatter is the YAML header of a local post.
type frontMatter struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Excerpt     string   `yaml:"excerpt"`
	PublishedAt string   `yaml:"publishedAt"`
	Author      string   `yaml:"author"`
	Categories  []string `yaml:"categories"`
	Featured    bool     `yaml:"featured"`
	MainImage   string   `yaml:"mainImage"`
	ImageAlt    string   `yaml:"imageAlt"`
	SEO         *struct {
		MetaTitle       string   `yaml:"metaTitle"`
		MetaDescription string   `yaml:"metaDescription"`
		Keywords        []string `yaml:"keywords"`
	} `yaml:"seo"`
}

// LocalSource serves posts from Markdown files with YAML front matter.
type LocalSource struct {
	dir string
	log *slog.Logger

	mu    sync.RWMutex
	posts []portabletext.Post // newest first
}

// NewLocalSource loads every post in dir.
func NewLocalSource(ctx context.Context, dir string, log *slog.Logger) (*LocalSource, error) {
	s := &LocalSource{dir: dir, log: log}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the directory. Files that fail to parse are logged and
// skipped.
func (s *LocalSource) Reload(ctx context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read content dir: %w", err)
	}

	var posts []portabletext.Post
	seen := map[string]string{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".md" && ext != ".markdown") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		post, err := loadPost(path)
		if err != nil {
			s.log.Warn("skipping post", "file", e.Name(), "error", err)
			continue
		}
		if prev, dup := seen[post.Slug.Current]; dup {
			s.log.Warn("duplicate slug", "slug", post.Slug.Current, "file", e.Name(), "kept", prev)
			continue
		}
		seen[post.Slug.Current] = e.Name()
		posts = append(posts, *post)
	}
	sortNewestFirst(posts)

	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()

	s.log.Info("local content loaded", "dir", s.dir, "posts", len(posts))
	return nil
}

func loadPost(path string) (*portabletext.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	header, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, err
	}
	var fm frontMatter
	if len(header) > 0 {
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return nil, fmt.Errorf("parse front matter: %w", err)
		}
	}

	slug := fm.Slug
	if slug == "" {
		slug = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	post := &portabletext.Post{
		ID:          "local-" + slug,
		Title:       fm.Title,
		Slug:        portabletext.Slug{Current: slug},
		Excerpt:     fm.Excerpt,
		PublishedAt: fm.PublishedAt,
		Author:      fm.Author,
		Categories:  fm.Categories,
		Featured:    fm.Featured,
		ImageAlt:    fm.ImageAlt,
		Body:        importer.ParseMarkdown(body),
	}
	if post.Title == "" {
		post.Title = slug
	}
	if fm.MainImage != "" {
		post.MainImage = &portabletext.Image{
			Asset: portabletext.AssetRef{URL: fm.MainImage},
			Alt:   fm.ImageAlt,
		}
	}
	if fm.SEO != nil {
		post.SEO = &portabletext.SEO{
			MetaTitle:       fm.SEO.MetaTitle,
			MetaDescription: fm.SEO.MetaDescription,
			Keywords:        fm.SEO.Keywords,
		}
	}
	return post, nil
}

// splitFrontMatter separates a leading "---" delimited YAML block from the
// Markdown body. Files without one are all body.
func splitFrontMatter(data []byte) (header, body []byte, err error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, data, nil
	}
	rest := normalized[4:]
	if bytes.HasPrefix(rest, []byte("---\n")) || bytes.Equal(rest, []byte("---")) {
		return nil, bytes.TrimPrefix(rest[3:], []byte("\n")), nil
	}
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, nil, fmt.Errorf("unterminated front matter")
	}
	header = rest[:end]
	body = rest[end+len("\n---"):]
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = nil
	}
	return header, body, nil
}

func sortNewestFirst(posts []portabletext.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		ti, tj := posts[i].Published(), posts[j].Published()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return posts[i].Slug.Current < posts[j].Slug.Current
	})
}

func (s *LocalSource) snapshot() []portabletext.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.posts
}

// card strips the body so list views match what the API returns.
func card(p portabletext.Post) portabletext.Post {
	p.Body = nil
	return p
}

func cards(posts []portabletext.Post, limit int) []portabletext.Post {
	out := make([]portabletext.Post, 0, len(posts))
	for _, p := range posts {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, card(p))
	}
	return out
}

func (s *LocalSource) AllPosts(ctx context.Context) ([]portabletext.Post, error) {
	return cards(s.snapshot(), 0), nil
}

func (s *LocalSource) PostBySlug(ctx context.Context, slug string) (*portabletext.Post, error) {
	for _, p := range s.snapshot() {
		if p.Slug.Current == slug {
			post := p
			return &post, nil
		}
	}
	return nil, fmt.Errorf("post %q: %w", slug, ErrNotFound)
}

func (s *LocalSource) AllSlugs(ctx context.Context) ([]string, error) {
	posts := s.snapshot()
	slugs := make([]string, 0, len(posts))
	for _, p := range posts {
		slugs = append(slugs, p.Slug.Current)
	}
	return slugs, nil
}

func (s *LocalSource) RecentPosts(ctx context.Context, limit int) ([]portabletext.Post, error) {
	if limit <= 0 {
		limit = 5
	}
	return cards(s.snapshot(), limit), nil
}

// RelatedPosts takes the limit*2 newest posts sharing a category with the
// current one and ranks them by how many of their categories are in
// categories, then by date. With no categories or no overlap it falls back
// to recent posts.
func (s *LocalSource) RelatedPosts(ctx context.Context, currentSlug string, categories []string, limit int) ([]portabletext.Post, error) {
	if limit <= 0 {
		limit = 4
	}
	posts := s.snapshot()
	want := make(map[string]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}

	type scored struct {
		post  portabletext.Post
		score int
		order int
	}
	var matches []scored
	for i, p := range posts {
		if len(matches) == limit*2 {
			break
		}
		if p.Slug.Current == currentSlug {
			continue
		}
		score := 0
		for _, c := range p.Categories {
			if want[c] {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{post: p, score: score, order: i})
		}
	}
	if len(matches) == 0 {
		return sanity.ExcludeSlug(cards(posts, limit+1), currentSlug, limit), nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].order < matches[j].order
	})
	out := make([]portabletext.Post, 0, limit)
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, card(m.post))
	}
	return out, nil
}
