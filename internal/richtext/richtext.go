// Package richtext renders Portable Text documents into HTML node trees.
package richtext

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/caseblog/internal/portabletext"
	"github.com/dgallion1/caseblog/internal/slug"
)

// Default figure dimensions for body images.
const (
	DefaultImageWidth  = 1000
	DefaultImageHeight = 563
)

// ImageURLer resolves an image reference to a delivery URL. It returns ""
// when the reference cannot be resolved.
type ImageURLer interface {
	ImageURL(img portabletext.Image, width, height int) string
}

// Options configures a Renderer.
type Options struct {
	// SiteDomain marks links containing it as internal.
	SiteDomain string
	// Images resolves image assets. When nil only images carrying a plain
	// URL are rendered.
	Images      ImageURLer
	ImageWidth  int
	ImageHeight int
	// Highlight enables syntax highlighting of code blocks.
	Highlight      bool
	HighlightStyle string
}

// Renderer converts blocks to HTML nodes. Heading anchor ids are unique
// across every call on the same Renderer, so a body rendered in several
// pieces gets the ids a single pass would produce. A Renderer is not safe
// for concurrent use; create one per page.
type Renderer struct {
	opts Options
	ids  slug.Registry
}

// New creates a Renderer, applying defaults for unset dimensions.
func New(opts Options) *Renderer {
	if opts.ImageWidth <= 0 {
		opts.ImageWidth = DefaultImageWidth
	}
	if opts.ImageHeight <= 0 {
		opts.ImageHeight = DefaultImageHeight
	}
	return &Renderer{opts: opts}
}

// Render maps blocks to nodes in document order. Consecutive list items are
// grouped into a single list; blocks of unknown kind or style produce
// nothing.
func (r *Renderer) Render(doc portabletext.Document) []*html.Node {
	var out []*html.Node
	var lists listBuilder
	for _, b := range doc {
		if b.IsListItem() {
			lists.add(&out, r.listItem(b), b)
			continue
		}
		lists.reset()
		if n := r.block(b); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// RenderHTML renders blocks and serialises the result.
func (r *Renderer) RenderHTML(doc portabletext.Document) (string, error) {
	return Serialize(r.Render(doc))
}

// Serialize writes nodes as HTML.
func Serialize(nodes []*html.Node) (string, error) {
	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return sb.String(), nil
}

func (r *Renderer) block(b portabletext.Block) *html.Node {
	switch b.Kind {
	case portabletext.KindText:
		return r.textBlock(b)
	case portabletext.KindImage:
		return r.image(b.Image)
	case portabletext.KindCode:
		return r.code(b.Code)
	default:
		return nil
	}
}

func (r *Renderer) textBlock(b portabletext.Block) *html.Node {
	var n *html.Node
	switch b.GetStyle() {
	case portabletext.StyleH2:
		n = r.heading(atom.H2, b)
	case portabletext.StyleH3:
		n = r.heading(atom.H3, b)
	case portabletext.StyleH4:
		n = element(atom.H4)
	case portabletext.StyleBlockquote:
		n = element(atom.Blockquote)
	case portabletext.StyleNormal:
		n = element(atom.P)
	default:
		return nil
	}
	appendAll(n, r.spans(b, b.Children))
	return n
}

func (r *Renderer) heading(a atom.Atom, b portabletext.Block) *html.Node {
	n := element(a)
	if id := r.ids.ID(portabletext.PlainText(b)); id != "" {
		n.Attr = append(n.Attr, attr("id", id))
	}
	return n
}

// listItem builds the <li> for a list entry. Non-normal styles wrap the
// item's content in the matching element so list headings keep anchors.
func (r *Renderer) listItem(b portabletext.Block) *html.Node {
	li := element(atom.Li)
	content := r.spans(b, b.Children)
	var wrap *html.Node
	switch b.GetStyle() {
	case portabletext.StyleH2:
		wrap = r.heading(atom.H2, b)
	case portabletext.StyleH3:
		wrap = r.heading(atom.H3, b)
	case portabletext.StyleH4:
		wrap = element(atom.H4)
	case portabletext.StyleBlockquote:
		wrap = element(atom.Blockquote)
	}
	if wrap != nil {
		appendAll(wrap, content)
		li.AppendChild(wrap)
		return li
	}
	appendAll(li, content)
	return li
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func appendAll(parent *html.Node, children []*html.Node) {
	for _, c := range children {
		parent.AppendChild(c)
	}
}
