// Package importer converts draft files into Portable Text documents so they
// can be previewed or served from a local content directory.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/caseblog/internal/portabletext"
)

// Importer converts raw draft bytes into a document.
type Importer interface {
	Import(r io.Reader, filename string) (portabletext.Document, error)
}

// SupportedExtensions lists the draft formats that can be imported.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".txt":      true,
	".docx":     true,
	".pdf":      true,
}

// ForFile returns the importer for a filename's extension.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".txt":
		return &TextImporter{}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	case ".pdf":
		return &PDFImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension can be imported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ImportFile is a convenience wrapper around ForFile and Import.
func ImportFile(r io.Reader, filename string) (portabletext.Document, error) {
	imp, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	return imp.Import(r, filename)
}
