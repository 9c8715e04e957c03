package portabletext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

type wireAsset struct {
	Ref string `json:"_ref,omitempty"`
	URL string `json:"url,omitempty"`
}

type wireMarkDef struct {
	Key  string `json:"_key,omitempty"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

type wireSpan struct {
	Key      string     `json:"_key,omitempty"`
	Type     string     `json:"_type,omitempty"`
	Text     string     `json:"text"`
	Marks    []string   `json:"marks,omitempty"`
	Children []wireSpan `json:"children,omitempty"`
}

type wireBlock struct {
	Key      string        `json:"_key,omitempty"`
	Type     string        `json:"_type"`
	Style    string        `json:"style,omitempty"`
	Children []wireSpan    `json:"children,omitempty"`
	MarkDefs []wireMarkDef `json:"markDefs,omitempty"`
	ListItem string        `json:"listItem,omitempty"`
	Level    int           `json:"level,omitempty"`
	Asset    *wireAsset    `json:"asset,omitempty"`
	Caption  string        `json:"caption,omitempty"`
	Alt      string        `json:"alt,omitempty"`
	Language string        `json:"language,omitempty"`
	Code     string        `json:"code,omitempty"`
	Filename string        `json:"filename,omitempty"`
}

func kindOf(typ string) Kind {
	switch typ {
	case "block":
		return KindText
	case "image":
		return KindImage
	case "code":
		return KindCode
	}
	return KindUnknown
}

func spansFromWire(in []wireSpan) []Span {
	if len(in) == 0 {
		return nil
	}
	out := make([]Span, 0, len(in))
	for _, s := range in {
		out = append(out, Span{
			Key:      s.Key,
			Type:     s.Type,
			Text:     s.Text,
			Marks:    s.Marks,
			Children: spansFromWire(s.Children),
		})
	}
	return out
}

func spansToWire(in []Span) []wireSpan {
	if len(in) == 0 {
		return nil
	}
	out := make([]wireSpan, 0, len(in))
	for _, s := range in {
		typ := s.Type
		if typ == "" {
			typ = "span"
		}
		out = append(out, wireSpan{
			Key:      s.Key,
			Type:     typ,
			Text:     s.Text,
			Marks:    s.Marks,
			Children: spansToWire(s.Children),
		})
	}
	return out
}

// UnmarshalJSON decodes a block. Unknown _type values decode to KindUnknown.
func (b *Block) UnmarshalJSON(data []byte) error {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*b = Block{
		Key:      w.Key,
		Type:     w.Type,
		Kind:     kindOf(w.Type),
		Style:    w.Style,
		ListItem: w.ListItem,
		Level:    w.Level,
	}
	switch b.Kind {
	case KindText:
		b.Children = spansFromWire(w.Children)
		for _, md := range w.MarkDefs {
			b.MarkDefs = append(b.MarkDefs, MarkDef{Key: md.Key, Type: md.Type, Href: md.Href})
		}
	case KindImage:
		img := &Image{Caption: w.Caption, Alt: w.Alt}
		if w.Asset != nil {
			img.Asset = AssetRef{Ref: w.Asset.Ref, URL: w.Asset.URL}
		}
		b.Image = img
	case KindCode:
		b.Code = &Code{Language: w.Language, Code: w.Code, Filename: w.Filename}
	}
	return nil
}

// MarshalJSON encodes a block in the backend's wire shape.
func (b Block) MarshalJSON() ([]byte, error) {
	w := wireBlock{
		Key:      b.Key,
		Type:     b.Type,
		Style:    b.Style,
		ListItem: b.ListItem,
		Level:    b.Level,
	}
	switch b.Kind {
	case KindText:
		if w.Type == "" {
			w.Type = "block"
		}
		if w.Style == "" {
			w.Style = StyleNormal
		}
		w.Children = spansToWire(b.Children)
		for _, md := range b.MarkDefs {
			w.MarkDefs = append(w.MarkDefs, wireMarkDef{Key: md.Key, Type: md.Type, Href: md.Href})
		}
		if w.MarkDefs == nil {
			w.MarkDefs = []wireMarkDef{}
		}
	case KindImage:
		if w.Type == "" {
			w.Type = "image"
		}
		if b.Image != nil {
			w.Asset = &wireAsset{Ref: b.Image.Asset.Ref, URL: b.Image.Asset.URL}
			w.Caption = b.Image.Caption
			w.Alt = b.Image.Alt
		}
	case KindCode:
		if w.Type == "" {
			w.Type = "code"
		}
		if b.Code != nil {
			w.Language = b.Code.Language
			w.Code = b.Code.Code
			w.Filename = b.Code.Filename
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a block array. A block that fails to decode is kept
// as a KindUnknown placeholder so one bad entry cannot sink the document.
func (d *Document) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	doc := make(Document, 0, len(raw))
	for _, r := range raw {
		var b Block
		if err := json.Unmarshal(r, &b); err != nil {
			doc = append(doc, Block{Kind: KindUnknown})
			continue
		}
		doc = append(doc, b)
	}
	*d = doc
	return nil
}

// Decode reads a JSON block array.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Unmarshal decodes a JSON block array.
func Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Encode writes the document as an indented JSON block array.
func Encode(w io.Writer, doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode([]Block(doc))
}
