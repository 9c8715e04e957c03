package sanity

import (
	"strings"
	"testing"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

func ref(r string) portabletext.Image {
	return portabletext.Image{Asset: portabletext.AssetRef{Ref: r}}
}

func TestImageBuilder_AssetRef(t *testing.T) {
	b := NewImageBuilder("s8mux3ix", "production")
	got := b.ImageURL(ref("image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg"), 1000, 563)
	want := "https://cdn.sanity.io/images/s8mux3ix/production/Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000.jpg?w=1000&h=563&fm=webp"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	got = b.ImageURL(ref("image-abc-600x900-jpg"), 1000, 0)
	if got != "https://cdn.sanity.io/images/s8mux3ix/production/abc-600x900.jpg?w=1000&fm=webp" {
		t.Errorf("expected width-only url, got %q", got)
	}

	got = b.URL(ref("image-abc-10x20-png"), ImageOptions{})
	if got != "https://cdn.sanity.io/images/s8mux3ix/production/abc-10x20.png" {
		t.Errorf("unexpected url without options %q", got)
	}
}

func TestImageBuilder_InvalidRefs(t *testing.T) {
	b := NewImageBuilder("p", "d")
	for _, r := range []string{"file-abc-pdf", "image-abc", "image-abc-10x-png", "image--10x10-png", "image-abc-axb-png"} {
		if got := b.ImageURL(ref(r), 100, 100); got != "" {
			t.Errorf("ref %q: expected empty url, got %q", r, got)
		}
	}
}

func TestImageBuilder_ExternalURLs(t *testing.T) {
	b := NewImageBuilder("p", "d")
	plain := portabletext.Image{Asset: portabletext.AssetRef{URL: "https://example.com/a.jpg"}}
	if got := b.ImageURL(plain, 100, 100); got != "https://example.com/a.jpg" {
		t.Errorf("expected passthrough, got %q", got)
	}

	unsplash := portabletext.Image{Asset: portabletext.AssetRef{URL: "https://images.unsplash.com/photo-1?w=800"}}
	if got := b.ImageURL(unsplash, 100, 100); got != "https://images.unsplash.com/photo-1?w=800&fm=webp&q=80" {
		t.Errorf("unexpected unsplash url %q", got)
	}
	unsplash.Asset.URL = "https://images.unsplash.com/photo-2"
	if got := b.ImageURL(unsplash, 100, 100); got != "https://images.unsplash.com/photo-2?fm=webp&q=80" {
		t.Errorf("unexpected unsplash url %q", got)
	}
}

func TestImageBuilder_SrcSet(t *testing.T) {
	b := NewImageBuilder("p", "d")
	got := b.SrcSet(ref("image-abc-1600x900-jpg"), []int{400, 800}, 0.5625)
	parts := strings.Split(got, ", ")
	if len(parts) != 2 {
		t.Fatalf("expected 2 candidates, got %q", got)
	}
	if parts[0] != "https://cdn.sanity.io/images/p/d/abc-1600x900.jpg?w=400&h=225&fm=webp 400w" {
		t.Errorf("unexpected first candidate %q", parts[0])
	}
	if !strings.HasSuffix(parts[1], "?w=800&h=450&fm=webp 800w") {
		t.Errorf("unexpected second candidate %q", parts[1])
	}
	if got := b.SrcSet(portabletext.Image{}, []int{400}, 0); got != "" {
		t.Errorf("expected empty srcset for unresolvable image, got %q", got)
	}
}
