package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

// PDFImporter handles PDF drafts. Only text survives: each page is split
// into paragraphs on blank lines.
type PDFImporter struct{}

func (p *PDFImporter) Import(r io.Reader, filename string) (portabletext.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	pages, err := extractPDFPages(data)
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var b docBuilder
	for _, page := range pages {
		paragraphs, err := splitParagraphs(strings.NewReader(page))
		if err != nil {
			return nil, err
		}
		for _, para := range paragraphs {
			b.text(portabletext.StyleNormal, textInline(para))
		}
	}
	return b.doc, nil
}

// extractPDFPages returns the plain text of every page. The pdf library
// panics on some malformed input, so panics are turned into errors.
func extractPDFPages(data []byte) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
