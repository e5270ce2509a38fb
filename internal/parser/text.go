package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/harvestparse/internal/doctree"
)

// TextSource reads text already extracted from a report, such as the output
// of `pdftotext -layout`. Pages are separated by form feeds.
type TextSource struct{}

func (s *TextSource) Extract(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return documentFromText(filename, string(data)), nil
}
