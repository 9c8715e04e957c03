// Package toc builds the "On This Page" outline from a document's headings.
package toc

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/caseblog/internal/portabletext"
	"github.com/dgallion1/caseblog/internal/slug"
)

// HeadingItem is one outline entry. Level is "h2" or "h3". ID is empty when
// the heading text has no slug.
type HeadingItem struct {
	Text  string `json:"text"`
	ID    string `json:"id"`
	Level string `json:"level"`
}

// Outline is an ordered heading list.
type Outline []HeadingItem

// Empty reports whether there is nothing to show. Callers omit the outline
// panel entirely in that case.
func (o Outline) Empty() bool {
	return len(o) == 0
}

// ExtractHeadings collects h2 and h3 blocks in document order. Headings with
// no text are dropped. Ids match those the richtext renderer assigns when it
// renders the same document.
func ExtractHeadings(doc portabletext.Document) Outline {
	var ids slug.Registry
	var out Outline
	for _, b := range doc {
		level := b.OutlineLevel()
		if level == "" {
			continue
		}
		text := portabletext.PlainText(b)
		if text == "" {
			continue
		}
		out = append(out, HeadingItem{Text: text, ID: ids.ID(text), Level: level})
	}
	return out
}

// RenderNav builds the outline navigation. It returns nil for an empty
// outline. Entries without an id are listed as plain text.
func RenderNav(items Outline) *html.Node {
	if items.Empty() {
		return nil
	}
	panel := element(atom.Div, attr("class", "toc"))
	title := element(atom.H4, attr("class", "toc-title"))
	title.AppendChild(text("On This Page"))
	panel.AppendChild(title)

	nav := element(atom.Nav, attr("aria-label", "Table of contents"))
	list := element(atom.Ul)
	for _, item := range items {
		li := element(atom.Li)
		if item.Level == portabletext.StyleH3 {
			li.Attr = append(li.Attr, attr("class", "toc-sub"))
		}
		label := element(atom.Span)
		label.AppendChild(text(item.Text))
		if item.ID == "" {
			li.AppendChild(label)
		} else {
			a := element(atom.A, attr("href", "#"+item.ID))
			a.AppendChild(label)
			li.AppendChild(a)
		}
		list.AppendChild(li)
	}
	nav.AppendChild(list)
	panel.AppendChild(nav)
	return panel
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
