package importer

import (
	"slices"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

// newKey returns a fresh block key. ULIDs sort by creation time, so keys
// follow document order.
func newKey() string {
	return strings.ToLower(ulid.Make().String())
}

// headingStyle maps a source heading level onto the blog's h2-h4 range.
func headingStyle(level int) string {
	switch {
	case level <= 2:
		return portabletext.StyleH2
	case level == 3:
		return portabletext.StyleH3
	default:
		return portabletext.StyleH4
	}
}

// docBuilder accumulates blocks in document order.
type docBuilder struct {
	doc portabletext.Document
}

func (d *docBuilder) text(style string, in *inline) {
	spans, defs := in.finish()
	if len(spans) == 0 {
		return
	}
	d.doc = append(d.doc, portabletext.Block{
		Key:      newKey(),
		Type:     "block",
		Kind:     portabletext.KindText,
		Style:    style,
		Children: spans,
		MarkDefs: defs,
	})
}

func (d *docBuilder) listItem(listType string, level int, in *inline) {
	spans, defs := in.finish()
	if len(spans) == 0 {
		return
	}
	d.doc = append(d.doc, portabletext.Block{
		Key:      newKey(),
		Type:     "block",
		Kind:     portabletext.KindText,
		Style:    portabletext.StyleNormal,
		Children: spans,
		MarkDefs: defs,
		ListItem: listType,
		Level:    level,
	})
}

func (d *docBuilder) image(src, alt, caption string) {
	if src == "" {
		return
	}
	d.doc = append(d.doc, portabletext.Block{
		Key:  newKey(),
		Type: "image",
		Kind: portabletext.KindImage,
		Image: &portabletext.Image{
			Asset:   portabletext.AssetRef{URL: src},
			Alt:     alt,
			Caption: caption,
		},
	})
}

func (d *docBuilder) code(language, code string) {
	if strings.TrimSpace(code) == "" {
		return
	}
	d.doc = append(d.doc, portabletext.Block{
		Key:  newKey(),
		Type: "code",
		Kind: portabletext.KindCode,
		Code: &portabletext.Code{Language: language, Code: code},
	})
}

// inline collects the spans of one text block. Marks pushed while text is
// added apply to that text; link marks reference a definition on the block.
type inline struct {
	spans []portabletext.Span
	defs  []portabletext.MarkDef
	marks []string
}

func (in *inline) push(mark string) {
	in.marks = append(in.marks, mark)
}

func (in *inline) pop() {
	if len(in.marks) > 0 {
		in.marks = in.marks[:len(in.marks)-1]
	}
}

// link registers a link definition and returns its mark key.
func (in *inline) link(href string) string {
	key := newKey()
	in.defs = append(in.defs, portabletext.MarkDef{Key: key, Type: "link", Href: href})
	return key
}

func (in *inline) add(s string) {
	if s == "" {
		return
	}
	if n := len(in.spans); n > 0 && slices.Equal(in.spans[n-1].Marks, in.marks) {
		in.spans[n-1].Text += s
		return
	}
	in.spans = append(in.spans, portabletext.Span{
		Key:   newKey(),
		Type:  "span",
		Text:  s,
		Marks: slices.Clone(in.marks),
	})
}

// finish trims surrounding whitespace and drops spans left empty.
func (in *inline) finish() ([]portabletext.Span, []portabletext.MarkDef) {
	if len(in.spans) == 0 {
		return nil, nil
	}
	in.spans[0].Text = strings.TrimLeft(in.spans[0].Text, " \t\n")
	last := len(in.spans) - 1
	in.spans[last].Text = strings.TrimRight(in.spans[last].Text, " \t\n")

	out := in.spans[:0]
	for _, s := range in.spans {
		if s.Text != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, in.defs
}

func textInline(s string) *inline {
	in := &inline{}
	in.add(s)
	return in
}
