// Package portabletext models the Portable Text document tree served by the
// content backend: an ordered list of typed blocks whose text blocks hold
// inline spans annotated with marks.
package portabletext

import "strings"

// Kind is the variant of a Block.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindImage
	KindCode
)

// Block styles used by the blog schema.
const (
	StyleNormal     = "normal"
	StyleH2         = "h2"
	StyleH3         = "h3"
	StyleH4         = "h4"
	StyleBlockquote = "blockquote"
)

// List item types.
const (
	ListBullet = "bullet"
	ListNumber = "number"
)

// Decorator marks. Any other mark name refers to a MarkDef key.
const (
	MarkStrong = "strong"
	MarkEm     = "em"
	MarkCode   = "code"
)

// Document is an ordered block sequence; slice order is document order.
type Document []Block

// Block is one node of the document tree.
type Block struct {
	Key  string // _key, opaque and stable across renders
	Type string // raw _type as received
	Kind Kind

	// Text blocks.
	Style    string
	Children []Span
	MarkDefs []MarkDef
	ListItem string // "", "bullet" or "number"
	Level    int    // list nesting level, 1-based

	// Image blocks.
	Image *Image

	// Code blocks.
	Code *Code
}

// Span is inline text with zero or more marks. Children holds nested inline
// content; the text of a span is its own Text followed by its children's.
type Span struct {
	Key      string
	Type     string
	Text     string
	Marks    []string
	Children []Span
}

// MarkDef defines an annotation mark such as a link.
type MarkDef struct {
	Key  string
	Type string
	Href string
}

// Image is an embedded image reference.
type Image struct {
	Asset   AssetRef
	Caption string
	Alt     string
}

// AssetRef points at an image either through a CDN asset id or a plain URL.
type AssetRef struct {
	Ref string
	URL string
}

// Code is a source listing block.
type Code struct {
	Language string
	Code     string
	Filename string
}

// GetStyle returns the block style, defaulting to "normal".
func (b Block) GetStyle() string {
	if b.Style == "" {
		return StyleNormal
	}
	return b.Style
}

// GetLevel returns the list level, defaulting to 1.
func (b Block) GetLevel() int {
	if b.Level < 1 {
		return 1
	}
	return b.Level
}

// IsListItem reports whether the block is a list entry.
func (b Block) IsListItem() bool {
	return b.Kind == KindText && b.ListItem != ""
}

// IsParagraph reports whether the block is a plain body paragraph.
// Headings, quotes, list items and non-text blocks are not paragraphs.
func (b Block) IsParagraph() bool {
	return b.Kind == KindText && b.ListItem == "" && b.GetStyle() == StyleNormal
}

// OutlineLevel returns "h2" or "h3" for headings that belong in the table of
// contents and carry an anchor, and "" for everything else. The renderer and
// the outline builder both key off this so their anchor ids stay in step.
func (b Block) OutlineLevel() string {
	if b.Kind != KindText {
		return ""
	}
	switch b.Style {
	case StyleH2, StyleH3:
		return b.Style
	}
	return ""
}

// MarkDef returns the definition for an annotation key.
func (b Block) MarkDef(key string) (MarkDef, bool) {
	for _, md := range b.MarkDefs {
		if md.Key == key {
			return md, true
		}
	}
	return MarkDef{}, false
}

// PlainText concatenates the literal text of every span in the block,
// flattening nested spans and ignoring marks.
func PlainText(b Block) string {
	var sb strings.Builder
	for _, s := range b.Children {
		writeSpanText(&sb, s)
	}
	return sb.String()
}

// SpanText returns the flattened text of a single span.
func SpanText(s Span) string {
	var sb strings.Builder
	writeSpanText(&sb, s)
	return sb.String()
}

func writeSpanText(sb *strings.Builder, s Span) {
	sb.WriteString(s.Text)
	for _, c := range s.Children {
		writeSpanText(sb, c)
	}
}
