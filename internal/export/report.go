package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/harvestparse/internal/harvest"
)

// ReportMarkdown summarises a result's sections and warnings as Markdown.
func ReportMarkdown(res *harvest.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s harvest %d\n\n", res.Species, res.Year)
	fmt.Fprintf(&b, "Source: `%s`\n\n", res.Document)
	fmt.Fprintf(&b, "- Harvest records: %d\n", len(res.Harvest))
	fmt.Fprintf(&b, "- DAU records: %d\n", len(res.DAU))
	fmt.Fprintf(&b, "- Sections: %d\n", len(res.Sections))
	fmt.Fprintf(&b, "- Warnings: %d\n\n", len(res.Warnings))

	b.WriteString("## Sections\n\n")
	if len(res.Sections) == 0 {
		b.WriteString("No sections found.\n\n")
	} else {
		b.WriteString("| Title | Type | Method | Season | License | Records | Unparsed |\n")
		b.WriteString("|---|---|---|---|---|---:|---:|\n")
		for _, s := range res.Sections {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d | %d |\n",
				cell(s.Title), s.Shape, s.Method, s.Season, cell(s.LicenseType), s.RecordCount, s.Unparsed)
		}
		b.WriteString("\n")
	}

	if len(res.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "- **%s** %s (%s, %s/%s)\n", w.Kind, w.Title, w.Shape, w.Method, w.Season)
			for _, l := range w.UnparsedSample {
				fmt.Fprintf(&b, "  - `%s`\n", strings.ReplaceAll(l, "`", "'"))
			}
		}
	}
	return b.String()
}

// RenderReport renders the Markdown summary of a result to HTML.
func RenderReport(res *harvest.Result) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(ReportMarkdown(res)), &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
