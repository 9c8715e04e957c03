package importer

import (
	"strings"
	"testing"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"post.md", "*importer.MarkdownImporter"},
		{"post.MARKDOWN", "*importer.MarkdownImporter"},
		{"draft.html", "*importer.HTMLImporter"},
		{"draft.htm", "*importer.HTMLImporter"},
		{"notes.txt", "*importer.TextImporter"},
		{"brief.docx", "*importer.DOCXImporter"},
		{"scan.pdf", "*importer.PDFImporter"},
	}
	for _, tt := range tests {
		imp, err := ForFile(tt.name)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if got := typeName(imp); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}

	if _, err := ForFile("data.csv"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func typeName(imp Importer) string {
	switch imp.(type) {
	case *MarkdownImporter:
		return "*importer.MarkdownImporter"
	case *HTMLImporter:
		return "*importer.HTMLImporter"
	case *TextImporter:
		return "*importer.TextImporter"
	case *DOCXImporter:
		return "*importer.DOCXImporter"
	case *PDFImporter:
		return "*importer.PDFImporter"
	}
	return "unknown"
}

func TestIsSupportedExtension(t *testing.T) {
	for _, name := range []string{"a.md", "b.HTML", "c.docx", "d.pdf", "e.txt"} {
		if !IsSupportedExtension(name) {
			t.Errorf("expected %s to be supported", name)
		}
	}
	for _, name := range []string{"a.csv", "b.json", "noext"} {
		if IsSupportedExtension(name) {
			t.Errorf("expected %s to be unsupported", name)
		}
	}
}

func TestTextImporter(t *testing.T) {
	input := "First line\nwraps here.\n\n\nSecond paragraph.\n   \nThird."
	doc, err := ImportFile(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"First line wraps here.", "Second paragraph.", "Third."}
	if len(doc) != len(want) {
		t.Fatalf("expected %d blocks, got %d", len(want), len(doc))
	}
	for i, w := range want {
		if got := portabletext.PlainText(doc[i]); got != w {
			t.Errorf("block %d: expected %q, got %q", i, w, got)
		}
		if !doc[i].IsParagraph() {
			t.Errorf("block %d: expected a paragraph", i)
		}
	}
}

func TestKeysUniqueAndLowercase(t *testing.T) {
	doc, err := ImportFile(strings.NewReader("a\n\nb\n\nc"), "x.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := map[string]bool{}
	for _, b := range doc {
		if b.Key == "" || b.Key != strings.ToLower(b.Key) {
			t.Errorf("expected lower-case key, got %q", b.Key)
		}
		if seen[b.Key] {
			t.Errorf("duplicate key %q", b.Key)
		}
		seen[b.Key] = true
	}
}

func TestInlineMergesAndTrims(t *testing.T) {
	in := &inline{}
	in.add("  hello ")
	in.add("world")
	in.push(portabletext.MarkStrong)
	in.add(" bold  ")
	in.pop()
	in.add("   ")
	spans, _ := in.finish()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Text != "hello world" {
		t.Errorf("expected merged leading span, got %q", spans[0].Text)
	}
	if spans[1].Text != " bold  " || spans[1].Marks[0] != portabletext.MarkStrong {
		t.Errorf("unexpected bold span %+v", spans[1])
	}
}

func TestHeadingStyle(t *testing.T) {
	want := map[int]string{1: "h2", 2: "h2", 3: "h3", 4: "h4", 5: "h4", 6: "h4"}
	for level, style := range want {
		if got := headingStyle(level); got != style {
			t.Errorf("level %d: expected %s, got %s", level, style, got)
		}
	}
}

func TestPDFImporter_RejectsGarbage(t *testing.T) {
	_, err := ImportFile(strings.NewReader("definitely not a pdf"), "x.pdf")
	if err == nil {
		t.Fatal("expected error for invalid pdf")
	}
}

func TestDOCXImporter_RejectsGarbage(t *testing.T) {
	_, err := ImportFile(strings.NewReader("not a zip"), "x.docx")
	if err == nil {
		t.Fatal("expected error for invalid docx")
	}
}
