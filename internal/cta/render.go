package cta

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	defaultInlineTitle = "Find Out What Your Case Is Worth"
	inlineBlurb        = "Our specialized tool can help you estimate the potential worth of your case based on current laws and precedents."
	cardBlurb          = "Answer a few simple questions to get an instant estimate of your potential settlement value."
)

// Inline is the interstitial placed between the two halves of a post body.
type Inline struct {
	URL          string
	CategoryName string
}

// Title is the CTA headline, tailored when a category name is known.
func (c Inline) Title() string {
	if c.CategoryName == "" {
		return defaultInlineTitle
	}
	return "Affected by a " + c.CategoryName + " Issue?"
}

// RenderInline builds the inline CTA node.
func RenderInline(c Inline) *html.Node {
	box := element(atom.Div, attr("class", "cta-inline"))
	copyCol := element(atom.Div, attr("class", "cta-copy"))
	copyCol.AppendChild(withText(element(atom.H4), c.Title()))
	copyCol.AppendChild(withText(element(atom.P), inlineBlurb))
	box.AppendChild(copyCol)
	box.AppendChild(withText(element(atom.A, attr("href", c.URL), attr("class", "cta-button")), "Check Case Worth"))
	return box
}

// RenderCard builds the sidebar "What's My Case Worth?" card.
func RenderCard(url string) *html.Node {
	card := element(atom.Div, attr("class", "cta-card"))

	head := element(atom.Div, attr("class", "cta-card-head"))
	head.AppendChild(withText(element(atom.H3), "What's My Case Worth?"))
	card.AppendChild(head)

	body := element(atom.Div, attr("class", "cta-card-body"))
	body.AppendChild(withText(element(atom.P), cardBlurb))
	body.AppendChild(withText(element(atom.A, attr("href", url), attr("class", "cta-button")), "Start Free Calculator"))
	body.AppendChild(withText(element(atom.Div, attr("class", "cta-note")), "No contact info required"))
	card.AppendChild(body)
	return card
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	return n
}
