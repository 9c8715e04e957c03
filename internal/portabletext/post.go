package portabletext

import (
	"encoding/json"
	"time"
)

// Slug mirrors the backend's slug object.
type Slug struct {
	Current string `json:"current"`
}

// SEO holds per-post metadata overrides.
type SEO struct {
	MetaTitle       string   `json:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// Post is a blog post as returned by the content queries. Body and
// Categories may be absent; both are treated as empty.
type Post struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Slug        Slug     `json:"slug"`
	Excerpt     string   `json:"excerpt,omitempty"`
	PublishedAt string   `json:"publishedAt,omitempty"`
	MainImage   *Image   `json:"mainImage,omitempty"`
	ImageAlt    string   `json:"imageAlt,omitempty"`
	Author      string   `json:"author,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Featured    bool     `json:"featured,omitempty"`
	Body        Document `json:"body,omitempty"`
	SEO         *SEO     `json:"seo,omitempty"`
}

// Published parses PublishedAt, returning the zero time when it is missing
// or malformed.
func (p *Post) Published() time.Time {
	if p.PublishedAt == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, p.PublishedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// HasCategory reports whether the post is tagged with category.
func (p *Post) HasCategory(category string) bool {
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}

type wireImage struct {
	Asset   *wireAsset `json:"asset,omitempty"`
	Caption string     `json:"caption,omitempty"`
	Alt     string     `json:"alt,omitempty"`
}

// UnmarshalJSON decodes an image object such as a post's main image.
func (img *Image) UnmarshalJSON(data []byte) error {
	var w wireImage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*img = Image{Caption: w.Caption, Alt: w.Alt}
	if w.Asset != nil {
		img.Asset = AssetRef{Ref: w.Asset.Ref, URL: w.Asset.URL}
	}
	return nil
}

// MarshalJSON encodes an image object in the backend's wire shape.
func (img Image) MarshalJSON() ([]byte, error) {
	w := struct {
		Type string `json:"_type"`
		wireImage
	}{Type: "image", wireImage: wireImage{Caption: img.Caption, Alt: img.Alt}}
	if img.Asset.Ref != "" || img.Asset.URL != "" {
		w.Asset = &wireAsset{Ref: img.Asset.Ref, URL: img.Asset.URL}
	}
	return json.Marshal(w)
}
