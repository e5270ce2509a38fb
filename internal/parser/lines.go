package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/harvestparse/internal/doctree"
)

// cleanLine composes the line to NFC, maps non-breaking and other Unicode
// spaces to ASCII and collapses runs of whitespace.
func cleanLine(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// pageFromText splits one page of extracted text into cleaned lines. Blank
// lines are kept out; a page with no text yields a page with nil Lines.
func pageFromText(n int, text string) *doctree.Page {
	p := &doctree.Page{Number: n}
	for _, raw := range strings.Split(text, "\n") {
		if line := cleanLine(strings.TrimSuffix(raw, "\r")); line != "" {
			p.Lines = append(p.Lines, line)
		}
	}
	return p
}

// splitPages splits text on form feeds. A trailing form feed does not start
// an extra page.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// documentFromText builds a document from form-feed separated page text.
func documentFromText(name, text string) *doctree.Document {
	doc := &doctree.Document{Name: name}
	for i, page := range splitPages(text) {
		doc.Pages = append(doc.Pages, pageFromText(i+1, page))
	}
	return doc
}
