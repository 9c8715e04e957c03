package sanity

import (
	"context"
	"fmt"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

const postCardFields = `
    _id,
    title,
    slug,
    excerpt,
    publishedAt,
    mainImage,
    author,
    categories,
    featured,
    "imageAlt": mainImage.alt`

const (
	allPostsQuery = `*[_type == "blogPost"] | order(publishedAt desc) {` + postCardFields + `
  }`

	postBySlugQuery = `*[_type == "blogPost" && slug.current == $slug][0] {
    _id,
    title,
    slug,
    body,
    mainImage,
    publishedAt,
    author,
    categories,
    excerpt,
    seo,
    "imageAlt": mainImage.alt
  }`

	allSlugsQuery = `*[_type == "blogPost" && defined(slug.current)] { slug }`

	recentPostsQuery = `*[_type == "blogPost"] | order(publishedAt desc)[0...$limit] {` + postCardFields + `
  }`

	relatedPostsQuery = `*[_type == "blogPost" && count((categories)[@ in $categories]) > 0 && slug.current != $currentSlug] | order(publishedAt desc)[0...$window] {` + postCardFields + `,
    "matchScore": count((categories)[@ in $categories])
  } | order(matchScore desc, publishedAt desc)[0...$limit]`
)

// AllPosts returns every post, newest first, without bodies.
func (c *Client) AllPosts(ctx context.Context) ([]portabletext.Post, error) {
	var posts []portabletext.Post
	if err := c.Query(ctx, "all_posts", allPostsQuery, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// PostBySlug returns one post with its body, or ErrNotFound.
func (c *Client) PostBySlug(ctx context.Context, slug string) (*portabletext.Post, error) {
	var post *portabletext.Post
	if err := c.Query(ctx, "post_by_slug", postBySlugQuery, map[string]any{"slug": slug}, &post); err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}
	return post, nil
}

// AllSlugs returns the slug of every post.
func (c *Client) AllSlugs(ctx context.Context) ([]string, error) {
	var rows []struct {
		Slug portabletext.Slug `json:"slug"`
	}
	if err := c.Query(ctx, "all_slugs", allSlugsQuery, nil, &rows); err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Slug.Current != "" {
			slugs = append(slugs, r.Slug.Current)
		}
	}
	return slugs, nil
}

// RecentPosts returns up to limit posts, newest first.
func (c *Client) RecentPosts(ctx context.Context, limit int) ([]portabletext.Post, error) {
	if limit <= 0 {
		limit = 5
	}
	var posts []portabletext.Post
	if err := c.Query(ctx, "recent_posts", recentPostsQuery, map[string]any{"limit": limit}, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// RelatedPosts returns up to limit posts sharing categories with the current
// post, ranked by overlap then date. When there are no categories or no
// matches it falls back to the most recent posts other than the current one.
func (c *Client) RelatedPosts(ctx context.Context, currentSlug string, categories []string, limit int) ([]portabletext.Post, error) {
	if limit <= 0 {
		limit = 4
	}
	if len(categories) > 0 {
		var posts []portabletext.Post
		params := map[string]any{
			"categories":  categories,
			"currentSlug": currentSlug,
			"window":      limit * 2,
			"limit":       limit,
		}
		if err := c.Query(ctx, "related_posts", relatedPostsQuery, params, &posts); err != nil {
			return nil, err
		}
		if len(posts) > 0 {
			return posts, nil
		}
	}

	recent, err := c.RecentPosts(ctx, limit+1)
	if err != nil {
		return nil, err
	}
	return ExcludeSlug(recent, currentSlug, limit), nil
}

// ExcludeSlug drops the post with slug and truncates to limit.
func ExcludeSlug(posts []portabletext.Post, slug string, limit int) []portabletext.Post {
	out := make([]portabletext.Post, 0, len(posts))
	for _, p := range posts {
		if p.Slug.Current == slug {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}
