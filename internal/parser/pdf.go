package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/harvestparse/internal/doctree"
)

// PDFSource handles PDF reports. It tries the Go library first,
// then falls back to pdftotext if enabled and available.
type PDFSource struct {
	FallbackPdftotext bool
}

func (s *PDFSource) Extract(r io.Reader, filename string) (*doctree.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "harvestparse-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc, err := extractPDFRows(tmpPath, filename)
	if (err != nil || doc.LineCount() == 0) && s.FallbackPdftotext {
		text, ferr := extractPdftotext(tmpPath)
		if ferr == nil {
			return documentFromText(filename, text), nil
		}
		if err == nil {
			err = ferr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return doc, nil
}

// extractPDFRows rebuilds each page's lines from the library's positioned
// text rows. A page the library cannot read is kept with nil Lines.
func extractPDFRows(path, name string) (*doctree.Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc := &doctree.Document{Name: name}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := &doctree.Page{Number: i}
		doc.Pages = append(doc.Pages, page)

		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			continue
		}
		page.Lines = rowLines(rows)
	}
	return doc, nil
}

// rowLines orders rows top to bottom and glyphs left to right, inserting a
// space wherever the horizontal gap between glyphs is wider than a fraction
// of the font size.
func rowLines(rows pdflib.Rows) []string {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	var lines []string
	for _, row := range rows {
		texts := row.Content
		sort.SliceStable(texts, func(i, j int) bool { return texts[i].X < texts[j].X })

		var b strings.Builder
		end := 0.0
		for i, t := range texts {
			if i > 0 && t.X-end > 0.2*t.FontSize {
				b.WriteByte(' ')
			}
			b.WriteString(t.S)
			end = t.X + t.W
		}
		if line := cleanLine(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
