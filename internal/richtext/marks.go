package richtext

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

// IsInternalLink reports whether href points at this site: a root-relative
// path or any URL containing siteDomain.
func IsInternalLink(href, siteDomain string) bool {
	if strings.HasPrefix(href, "/") {
		return true
	}
	return siteDomain != "" && strings.Contains(href, siteDomain)
}

func (r *Renderer) spans(b portabletext.Block, spans []portabletext.Span) []*html.Node {
	var out []*html.Node
	for _, s := range spans {
		out = append(out, r.span(b, s)...)
	}
	return out
}

// span renders text and nested children, then wraps them in marks with the
// first mark outermost.
func (r *Renderer) span(b portabletext.Block, s portabletext.Span) []*html.Node {
	nodes := textWithBreaks(s.Text)
	nodes = append(nodes, r.spans(b, s.Children)...)
	if len(nodes) == 0 {
		return nil
	}
	for i := len(s.Marks) - 1; i >= 0; i-- {
		if w := r.markElement(b, s.Marks[i]); w != nil {
			appendAll(w, nodes)
			nodes = []*html.Node{w}
		}
	}
	return nodes
}

func (r *Renderer) markElement(b portabletext.Block, mark string) *html.Node {
	switch mark {
	case portabletext.MarkStrong:
		return element(atom.Strong)
	case portabletext.MarkEm:
		return element(atom.Em)
	case portabletext.MarkCode:
		return element(atom.Code)
	}
	md, ok := b.MarkDef(mark)
	if !ok || md.Href == "" {
		return nil
	}
	if md.Type != "" && md.Type != "link" {
		return nil
	}
	if !IsSafeHref(md.Href) {
		return nil
	}
	return r.link(md.Href)
}

// IsSafeHref reports whether href may be written into an anchor: a
// root-relative path, a fragment, or an http, https, mailto or tel URL.
// Anything else, javascript: and data: included, renders as plain text.
func IsSafeHref(href string) bool {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		return false
	}
	if strings.HasPrefix(href, "/") || strings.HasPrefix(href, "#") {
		return true
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	case "mailto", "tel":
		return true
	}
	return false
}

func (r *Renderer) link(href string) *html.Node {
	if IsInternalLink(href, r.opts.SiteDomain) {
		return element(atom.A, attr("href", href), attr("target", "_self"))
	}
	return element(atom.A,
		attr("href", href),
		attr("target", "_blank"),
		attr("rel", "noopener noreferrer"),
	)
}

// textWithBreaks turns soft line breaks into <br> elements.
func textWithBreaks(s string) []*html.Node {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	out := make([]*html.Node, 0, 2*len(lines)-1)
	for i, line := range lines {
		if i > 0 {
			out = append(out, element(atom.Br))
		}
		if line != "" {
			out = append(out, text(line))
		}
	}
	return out
}
