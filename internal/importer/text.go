package importer

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

// TextImporter handles plain text drafts. Blank lines separate paragraphs;
// wrapped lines within a paragraph are joined with spaces.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) (portabletext.Document, error) {
	paragraphs, err := splitParagraphs(r)
	if err != nil {
		return nil, err
	}
	var b docBuilder
	for _, para := range paragraphs {
		b.text(portabletext.StyleNormal, textInline(para))
	}
	return b.doc, nil
}

func splitParagraphs(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paragraphs, nil
}
