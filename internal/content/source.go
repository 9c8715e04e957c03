// Package content abstracts where posts come from: the Sanity API in
// production or a directory of Markdown files for local drafts.
package content

import (
	"context"

	"github.com/dgallion1/caseblog/internal/portabletext"
	"github.com/dgallion1/caseblog/internal/sanity"
)

// ErrNotFound is returned by PostBySlug when no post has the slug.
var ErrNotFound = sanity.ErrNotFound

// Source provides posts. PostBySlug is the only call that returns bodies.
type Source interface {
	AllPosts(ctx context.Context) ([]portabletext.Post, error)
	PostBySlug(ctx context.Context, slug string) (*portabletext.Post, error)
	AllSlugs(ctx context.Context) ([]string, error)
	RecentPosts(ctx context.Context, limit int) ([]portabletext.Post, error)
	RelatedPosts(ctx context.Context, currentSlug string, categories []string, limit int) ([]portabletext.Post, error)
}

// Reloader is implemented by sources that cache their content and can
// refresh it on demand.
type Reloader interface {
	Reload(ctx context.Context) error
}

var _ Source = (*sanity.Client)(nil)
