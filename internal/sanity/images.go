package sanity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

const cdnBase = "https://cdn.sanity.io"

// ImageOptions selects the rendition of an image.
type ImageOptions struct {
	Width  int
	Height int
	Format string // e.g. "webp"; empty keeps the original
}

// ImageBuilder turns image asset references into CDN URLs.
type ImageBuilder struct {
	projectID string
	dataset   string
}

func NewImageBuilder(projectID, dataset string) *ImageBuilder {
	return &ImageBuilder{projectID: projectID, dataset: dataset}
}

// URL returns the delivery URL for img, or "" when it has neither a valid
// asset reference nor a plain URL. Unsplash URLs are asked for WebP.
func (b *ImageBuilder) URL(img portabletext.Image, opts ImageOptions) string {
	if img.Asset.Ref != "" {
		if u, ok := b.assetURL(img.Asset.Ref, opts); ok {
			return u
		}
	}
	if img.Asset.URL == "" {
		return ""
	}
	u := img.Asset.URL
	if strings.Contains(u, "images.unsplash.com") {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + "fm=webp&q=80"
	}
	return u
}

// ImageURL renders a WebP rendition at the given size.
func (b *ImageBuilder) ImageURL(img portabletext.Image, width, height int) string {
	return b.URL(img, ImageOptions{Width: width, Height: height, Format: "webp"})
}

// SrcSet returns a srcset attribute value for the given widths. A positive
// aspectRatio (height/width) also fixes the height of each candidate.
func (b *ImageBuilder) SrcSet(img portabletext.Image, widths []int, aspectRatio float64) string {
	parts := make([]string, 0, len(widths))
	for _, w := range widths {
		opts := ImageOptions{Width: w, Format: "webp"}
		if aspectRatio > 0 {
			opts.Height = int(float64(w)*aspectRatio + 0.5)
		}
		u := b.URL(img, opts)
		if u == "" {
			return ""
		}
		parts = append(parts, fmt.Sprintf("%s %dw", u, w))
	}
	return strings.Join(parts, ", ")
}

// assetURL parses refs of the form image-<id>-<w>x<h>-<format>.
func (b *ImageBuilder) assetURL(ref string, opts ImageOptions) (string, bool) {
	rest, ok := strings.CutPrefix(ref, "image-")
	if !ok {
		return "", false
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 {
		return "", false
	}
	rest, format := rest[:i], rest[i+1:]
	j := strings.LastIndex(rest, "-")
	if j <= 0 {
		return "", false
	}
	id, dims := rest[:j], rest[j+1:]
	w, h, ok := strings.Cut(dims, "x")
	if !ok || !isDigits(w) || !isDigits(h) || format == "" {
		return "", false
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s/images/%s/%s/%s-%s.%s", cdnBase, b.projectID, b.dataset, id, dims, format)
	var q []string
	if opts.Width > 0 {
		q = append(q, "w="+strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		q = append(q, "h="+strconv.Itoa(opts.Height))
	}
	if opts.Format != "" {
		q = append(q, "fm="+opts.Format)
	}
	if len(q) > 0 {
		sb.WriteString("?")
		sb.WriteString(strings.Join(q, "&"))
	}
	return sb.String(), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
