package doctree

// Document is the raw text of one source report as returned by a page source.
type Document struct {
	Name  string  // Source identifier (filename or upload name)
	Pages []*Page // Pages in reading order
}

// Page is the extracted text of a single page.
type Page struct {
	Number int      // 1-based page number in the source
	Lines  []string // Lines in reading order; nil if extraction failed
}

// Extracted reports whether the extractor produced any text for the page.
func (p *Page) Extracted() bool {
	return p != nil && len(p.Lines) > 0
}

// LineCount returns the total number of lines across all pages.
func (d *Document) LineCount() int {
	n := 0
	for _, p := range d.Pages {
		if p != nil {
			n += len(p.Lines)
		}
	}
	return n
}
