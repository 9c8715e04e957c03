package importer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

// DOCXImporter handles Word drafts. Heading styles become headings, quote
// styles become block quotes and numbered paragraphs become list items.
type DOCXImporter struct{}

func (p *DOCXImporter) Import(r io.Reader, filename string) (portabletext.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var b docBuilder
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		in := docxInline(doc, para)
		style := docxStyle(para)
		switch {
		case docxHeadingLevel(style) > 0:
			b.text(headingStyle(docxHeadingLevel(style)), in)
		case isQuoteStyle(style):
			b.text(portabletext.StyleBlockquote, in)
		case para.Properties != nil && para.Properties.NumProperties != nil:
			b.listItem(portabletext.ListBullet, docxListLevel(para), in)
		case strings.EqualFold(style, "ListParagraph"):
			b.listItem(portabletext.ListBullet, 1, in)
		default:
			b.text(portabletext.StyleNormal, in)
		}
	}
	return b.doc, nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if s == "title" {
		return 1
	}
	if n, ok := strings.CutPrefix(s, "heading"); ok {
		if level, err := strconv.Atoi(n); err == nil && level >= 1 && level <= 6 {
			return level
		}
	}
	return 0
}

func isQuoteStyle(style string) bool {
	s := strings.ToLower(style)
	return s == "quote" || s == "intensequote"
}

func docxListLevel(para *docx.Paragraph) int {
	np := para.Properties.NumProperties
	if np.Ilvl == nil {
		return 1
	}
	lvl, err := strconv.Atoi(np.Ilvl.Val)
	if err != nil || lvl < 0 {
		return 1
	}
	return lvl + 1
}

func docxInline(doc *docx.Docx, para *docx.Paragraph) *inline {
	in := &inline{}
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			docxRun(in, c)
		case *docx.Hyperlink:
			href, err := doc.ReferTarget(c.ID)
			if err != nil || href == "" {
				docxRun(in, &c.Run)
				continue
			}
			in.push(in.link(href))
			docxRun(in, &c.Run)
			in.pop()
		}
	}
	return in
}

func docxRun(in *inline, run *docx.Run) {
	pushed := 0
	if rp := run.RunProperties; rp != nil {
		if rp.Bold != nil {
			in.push(portabletext.MarkStrong)
			pushed++
		}
		if rp.Italic != nil {
			in.push(portabletext.MarkEm)
			pushed++
		}
	}
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			in.add(t.Text)
		case *docx.Tab:
			in.add(" ")
		}
	}
	for ; pushed > 0; pushed-- {
		in.pop()
	}
}
