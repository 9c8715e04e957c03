package importer

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

// MarkdownImporter handles Markdown drafts using goldmark.
type MarkdownImporter struct{}

func (p *MarkdownImporter) Import(r io.Reader, filename string) (portabletext.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseMarkdown(src), nil
}

// ParseMarkdown converts Markdown source into a document.
func ParseMarkdown(src []byte) portabletext.Document {
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	w := &mdWalker{src: src}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n)
	}
	return w.b.doc
}

type mdWalker struct {
	src []byte
	b   docBuilder
}

func (w *mdWalker) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		w.b.text(headingStyle(node.Level), w.inlines(node))
	case *ast.Paragraph, *ast.TextBlock:
		if img, ok := soleImage(node); ok {
			w.b.image(string(img.Destination), w.plain(img), string(img.Title))
			return
		}
		w.b.text(portabletext.StyleNormal, w.inlines(node))
	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			w.b.text(portabletext.StyleBlockquote, w.inlines(c))
		}
	case *ast.List:
		w.list(node, 1)
	case *ast.FencedCodeBlock:
		w.b.code(string(node.Language(w.src)), w.lines(node))
	case *ast.CodeBlock:
		w.b.code("", w.lines(node))
	}
}

func (w *mdWalker) list(l *ast.List, level int) {
	listType := portabletext.ListBullet
	if l.IsOrdered() {
		listType = portabletext.ListNumber
	}
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if nested, ok := c.(*ast.List); ok {
				w.list(nested, level+1)
				continue
			}
			w.b.listItem(listType, level, w.inlines(c))
		}
	}
}

func (w *mdWalker) inlines(n ast.Node) *inline {
	in := &inline{}
	w.walkInline(in, n)
	return in
}

func (w *mdWalker) walkInline(in *inline, n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			in.add(string(node.Segment.Value(w.src)))
			switch {
			case node.HardLineBreak():
				in.add("\n")
			case node.SoftLineBreak():
				in.add(" ")
			}
		case *ast.String:
			in.add(string(node.Value))
		case *ast.Emphasis:
			mark := portabletext.MarkEm
			if node.Level >= 2 {
				mark = portabletext.MarkStrong
			}
			in.push(mark)
			w.walkInline(in, node)
			in.pop()
		case *ast.CodeSpan:
			in.push(portabletext.MarkCode)
			w.walkInline(in, node)
			in.pop()
		case *ast.Link:
			in.push(in.link(string(node.Destination)))
			w.walkInline(in, node)
			in.pop()
		case *ast.AutoLink:
			in.push(in.link(string(node.URL(w.src))))
			in.add(string(node.Label(w.src)))
			in.pop()
		case *ast.Image:
			in.add(w.plain(node))
		case *ast.RawHTML:
		default:
			w.walkInline(in, node)
		}
	}
}

// plain flattens inline children to text.
func (w *mdWalker) plain(n ast.Node) string {
	in := &inline{}
	w.walkInline(in, n)
	var sb strings.Builder
	for _, s := range in.spans {
		sb.WriteString(s.Text)
	}
	return strings.TrimSpace(sb.String())
}

func (w *mdWalker) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(w.src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

// soleImage reports whether a paragraph holds nothing but one image.
func soleImage(n ast.Node) (*ast.Image, bool) {
	var img *ast.Image
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Image:
			if img != nil {
				return nil, false
			}
			img = node
		case *ast.Text:
			if node.Segment.Len() > 0 && !node.SoftLineBreak() {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return img, img != nil
}
