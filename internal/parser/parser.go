package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/harvestparse/internal/doctree"
)

// Source extracts per-page text lines from raw report bytes.
type Source interface {
	Extract(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions the pipeline can read.
var SupportedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
}

// ForFile returns the page source for a filename. PDF sources fall back to
// pdftotext when fallback is set.
func ForFile(filename string, fallback bool) (Source, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFSource{FallbackPdftotext: fallback}, nil
	case ".txt":
		return &TextSource{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
