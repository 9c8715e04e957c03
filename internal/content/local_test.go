package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writePost(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newFixture(t *testing.T) *LocalSource {
	t.Helper()
	dir := t.TempDir()
	writePost(t, dir, "dog-bites.md", `---
title: Dog Bite Claims
publishedAt: 2025-03-01
categories: [dog-bite, personal-injury]
mainImage: https://images.unsplash.com/photo-1
imageAlt: A dog
seo:
  metaTitle: Dog Bites Explained
---
## What to do

First paragraph.
`)
	writePost(t, dir, "car-crash.md", `---
title: Car Crash Basics
slug: car-crash-basics
publishedAt: 2025-02-01T10:00:00Z
categories: [car-accident, personal-injury]
---
Body text.
`)
	writePost(t, dir, "wage.md", `---
title: Unpaid Wages
publishedAt: 2025-01-15
categories: [wage-theft]
---
Body.
`)
	writePost(t, dir, "plain.md", "No front matter here.\n")
	writePost(t, dir, "broken.md", "---\ntitle: [unterminated\n---\nbody\n")
	writePost(t, dir, "notes.txt", "ignored")

	s, err := NewLocalSource(context.Background(), dir, discardLogger())
	if err != nil {
		t.Fatalf("NewLocalSource: %v", err)
	}
	return s
}

func TestLocalSource_AllSlugsNewestFirst(t *testing.T) {
	s := newFixture(t)
	slugs, err := s.AllSlugs(context.Background())
	if err != nil {
		t.Fatalf("AllSlugs: %v", err)
	}
	got := strings.Join(slugs, ",")
	want := "dog-bites,car-crash-basics,wage,plain"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestLocalSource_PostBySlug(t *testing.T) {
	s := newFixture(t)
	p, err := s.PostBySlug(context.Background(), "dog-bites")
	if err != nil {
		t.Fatalf("PostBySlug: %v", err)
	}
	if p.Title != "Dog Bite Claims" {
		t.Errorf("expected title, got %q", p.Title)
	}
	if p.MainImage == nil || p.MainImage.Asset.URL != "https://images.unsplash.com/photo-1" || p.MainImage.Alt != "A dog" {
		t.Errorf("unexpected main image %+v", p.MainImage)
	}
	if p.SEO == nil || p.SEO.MetaTitle != "Dog Bites Explained" {
		t.Errorf("unexpected seo %+v", p.SEO)
	}
	if len(p.Body) != 2 || p.Body[0].Style != "h2" {
		t.Fatalf("unexpected body %+v", p.Body)
	}
	if p.Published().Month() != 3 {
		t.Errorf("expected March publish date, got %v", p.Published())
	}

	_, err = s.PostBySlug(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalSource_ListsOmitBody(t *testing.T) {
	s := newFixture(t)
	posts, err := s.AllPosts(context.Background())
	if err != nil {
		t.Fatalf("AllPosts: %v", err)
	}
	for _, p := range posts {
		if p.Body != nil {
			t.Errorf("expected no body for %s", p.Slug.Current)
		}
	}
	full, _ := s.PostBySlug(context.Background(), "dog-bites")
	if len(full.Body) == 0 {
		t.Error("listing must not clear the stored body")
	}
}

func TestLocalSource_RecentPosts(t *testing.T) {
	s := newFixture(t)
	posts, _ := s.RecentPosts(context.Background(), 2)
	if len(posts) != 2 || posts[0].Slug.Current != "dog-bites" {
		t.Errorf("unexpected recent posts %+v", posts)
	}
	posts, _ = s.RecentPosts(context.Background(), 0)
	if len(posts) != 4 {
		t.Errorf("expected default limit to cover all 4 posts, got %d", len(posts))
	}
}

func TestLocalSource_RelatedPosts(t *testing.T) {
	s := newFixture(t)
	ctx := context.Background()

	posts, _ := s.RelatedPosts(ctx, "dog-bites", []string{"dog-bite", "personal-injury"}, 4)
	if len(posts) != 1 || posts[0].Slug.Current != "car-crash-basics" {
		t.Errorf("expected car crash as related, got %+v", posts)
	}

	posts, _ = s.RelatedPosts(ctx, "wage", []string{"wage-theft"}, 2)
	if len(posts) != 2 || posts[0].Slug.Current != "dog-bites" || posts[1].Slug.Current != "car-crash-basics" {
		t.Errorf("expected recent fallback, got %+v", posts)
	}

	posts, _ = s.RelatedPosts(ctx, "dog-bites", nil, 4)
	for _, p := range posts {
		if p.Slug.Current == "dog-bites" {
			t.Error("fallback must exclude the current post")
		}
	}
}

func TestLocalSource_RelatedPostsWindow(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "cur.md", "---\npublishedAt: 2025-06-01\ncategories: [dog-bite, personal-injury]\n---\nx\n")
	writePost(t, dir, "newer.md", "---\npublishedAt: 2025-05-01\ncategories: [dog-bite]\n---\nx\n")
	writePost(t, dir, "middle.md", "---\npublishedAt: 2025-04-01\ncategories: [personal-injury, wage-theft]\n---\nx\n")
	writePost(t, dir, "older.md", "---\npublishedAt: 2025-03-01\ncategories: [dog-bite, personal-injury]\n---\nx\n")
	writePost(t, dir, "unrelated.md", "---\npublishedAt: 2025-05-15\ncategories: [wage-theft]\n---\nx\n")
	s, err := NewLocalSource(context.Background(), dir, discardLogger())
	if err != nil {
		t.Fatalf("NewLocalSource: %v", err)
	}
	ctx := context.Background()
	cats := []string{"dog-bite", "personal-injury"}

	// Only the two newest matches are ranked, so the best-scoring old post
	// is out of reach with limit 1.
	posts, _ := s.RelatedPosts(ctx, "cur", cats, 1)
	if len(posts) != 1 || posts[0].Slug.Current != "newer" {
		t.Errorf("expected newer within the window, got %+v", posts)
	}

	posts, _ = s.RelatedPosts(ctx, "cur", cats, 2)
	got := []string{}
	for _, p := range posts {
		got = append(got, p.Slug.Current)
	}
	if strings.Join(got, ",") != "older,newer" {
		t.Errorf("expected older,newer, got %v", got)
	}
}

func TestLocalSource_Reload(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "one.md", "---\ntitle: One\n---\nx\n")
	s, err := NewLocalSource(context.Background(), dir, discardLogger())
	if err != nil {
		t.Fatalf("NewLocalSource: %v", err)
	}
	writePost(t, dir, "two.md", "---\ntitle: Two\npublishedAt: 2025-01-01\n---\ny\n")
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	slugs, _ := s.AllSlugs(context.Background())
	if len(slugs) != 2 {
		t.Errorf("expected 2 slugs after reload, got %v", slugs)
	}
}

func TestNewLocalSource_MissingDir(t *testing.T) {
	_, err := NewLocalSource(context.Background(), filepath.Join(t.TempDir(), "missing"), discardLogger())
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name, in, header, body string
		wantErr                bool
	}{
		{"none", "hello\n", "", "hello\n", false},
		{"basic", "---\na: 1\n---\nbody\n", "a: 1", "body\n", false},
		{"crlf", "---\r\na: 1\r\n---\r\nbody\r\n", "a: 1", "body\n", false},
		{"empty header", "---\n---\nbody", "", "body", false},
		{"no body", "---\na: 1\n---", "a: 1", "", false},
		{"unterminated", "---\na: 1\n", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, b, err := splitFrontMatter([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected err=%v, got %v", tt.wantErr, err)
			}
			if string(h) != tt.header {
				t.Errorf("expected header %q, got %q", tt.header, h)
			}
			if string(b) != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, b)
			}
		})
	}
}
