package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

// draftPolicy is bluemonday's UGC policy plus code-language classes. Site
// chrome is dropped along with its content.
var draftPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#-]+$`)).OnElements("code")
	p.SkipElementsContent("nav", "header", "footer", "aside")
	return p
}()

// HTMLImporter handles HTML drafts. Input is sanitised before it is walked.
type HTMLImporter struct{}

func (p *HTMLImporter) Import(r io.Reader, filename string) (portabletext.Document, error) {
	clean := draftPolicy.SanitizeReader(r)
	doc, err := html.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	w := &htmlWalker{}
	if body := findBody(doc); body != nil {
		w.blocks(body)
	} else {
		w.blocks(doc)
	}
	return w.b.doc, nil
}

type htmlWalker struct {
	b docBuilder
}

func (w *htmlWalker) blocks(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.block(c)
	}
}

func (w *htmlWalker) block(n *html.Node) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			w.b.text(portabletext.StyleNormal, textInline(collapseSpace(t)))
		}
		return
	}
	if n.Type != html.ElementNode {
		return
	}
	if level := headingLevel(n.Data); level > 0 {
		w.b.text(headingStyle(level), w.inlines(n))
		return
	}
	switch n.Data {
	case "p":
		if img := soleElement(n, "img"); img != nil {
			w.b.image(getAttr(img, "src"), getAttr(img, "alt"), getAttr(img, "title"))
			return
		}
		w.b.text(portabletext.StyleNormal, w.inlines(n))
	case "blockquote":
		if hasElementChild(n, "p") {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == "p" {
					w.b.text(portabletext.StyleBlockquote, w.inlines(c))
				}
			}
			return
		}
		w.b.text(portabletext.StyleBlockquote, w.inlines(n))
	case "ul", "ol":
		w.list(n, 1)
	case "pre":
		w.b.code(codeLanguage(n), textContent(n))
	case "img":
		w.b.image(getAttr(n, "src"), getAttr(n, "alt"), getAttr(n, "title"))
	case "figure":
		img := findElement(n, "img")
		if img == nil {
			w.blocks(n)
			return
		}
		caption := ""
		if fc := findElement(n, "figcaption"); fc != nil {
			caption = collapseSpace(textContent(fc))
		}
		w.b.image(getAttr(img, "src"), getAttr(img, "alt"), caption)
	default:
		w.blocks(n)
	}
}

func (w *htmlWalker) list(n *html.Node, level int) {
	listType := portabletext.ListBullet
	if n.Data == "ol" {
		listType = portabletext.ListNumber
	}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		in := &inline{}
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				nested = append(nested, c)
				continue
			}
			w.inline(in, c)
		}
		w.b.listItem(listType, level, in)
		for _, l := range nested {
			w.list(l, level+1)
		}
	}
}

func (w *htmlWalker) inlines(n *html.Node) *inline {
	in := &inline{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.inline(in, c)
	}
	return in
}

func (w *htmlWalker) inline(in *inline, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		in.add(collapseSpace(n.Data))
		return
	case html.ElementNode:
	default:
		return
	}

	mark := ""
	switch n.Data {
	case "br":
		in.add("\n")
		return
	case "img":
		in.add(getAttr(n, "alt"))
		return
	case "strong", "b":
		mark = portabletext.MarkStrong
	case "em", "i":
		mark = portabletext.MarkEm
	case "code":
		mark = portabletext.MarkCode
	case "a":
		if href := getAttr(n, "href"); href != "" {
			mark = in.link(href)
		}
	}
	if mark != "" {
		in.push(mark)
		defer in.pop()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.inline(in, c)
	}
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// collapseSpace folds whitespace runs to a single space, keeping a single
// leading or trailing space so adjacent inline text stays separated.
func collapseSpace(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return " "
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Trim(buf.String(), "\n")
}

func codeLanguage(pre *html.Node) string {
	code := findElement(pre, "code")
	if code == nil {
		return ""
	}
	for _, cls := range strings.Fields(getAttr(code, "class")) {
		if lang, ok := strings.CutPrefix(cls, "language-"); ok {
			return lang
		}
	}
	return ""
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if f := findElement(c, tag); f != nil {
			return f
		}
	}
	return nil
}

func hasElementChild(n *html.Node, tag string) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return true
		}
	}
	return false
}

// soleElement returns the only element child of n when it has the given tag
// and n has no other non-blank content.
func soleElement(n *html.Node, tag string) *html.Node {
	var found *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil
			}
		case html.ElementNode:
			if found != nil || c.Data != tag {
				return nil
			}
			found = c
		}
	}
	return found
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
