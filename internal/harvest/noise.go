package harvest

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/harvestparse/internal/doctree"
)

var (
	// tocLeaderPattern matches the dot leaders between a TOC entry and its page number.
	tocLeaderPattern = regexp.MustCompile(`\.{4,}`)

	// pageNumberPattern matches lines containing only a page number.
	pageNumberPattern = regexp.MustCompile(`^\d{1,3}$`)

	// filenameYearPattern matches a four-digit year anywhere in a document name.
	filenameYearPattern = regexp.MustCompile(`(?:19|20)\d{2}`)

	// spacedOrdinals undo extraction artifacts like "1 s t" -> "1st".
	spacedOrdinals = []struct {
		pattern *regexp.Regexp
		repl    string
	}{
		{regexp.MustCompile(`\b1\s+s\s+t\b`), "1st"},
		{regexp.MustCompile(`\b2\s+n\s+d\b`), "2nd"},
		{regexp.MustCompile(`\b3\s+r\s+d\b`), "3rd"},
		{regexp.MustCompile(`\b4\s+t\s+h\b`), "4th"},
	}
)

const (
	tocLeaderThreshold = 5 // more leader lines than this marks a TOC page
	tocHeadingLines    = 5 // lines searched for a "Contents" heading
)

// NormalizeOrdinals rejoins ordinal suffixes the extractor split with spaces.
// Applying it more than once has no further effect.
func NormalizeOrdinals(text string) string {
	for _, o := range spacedOrdinals {
		text = o.pattern.ReplaceAllString(text, o.repl)
	}
	return text
}

// noiseFilter flattens a document's pages into a clean line stream and
// finds the report year.
type noiseFilter struct {
	subject          string
	headingYear      *regexp.Regexp // year followed by the subject noun anywhere in a page
	lineYear         *regexp.Regexp // line that begins with year + subject noun
	yearFromFilename bool
}

func newNoiseFilter(subject string, yearFromFilename bool) *noiseFilter {
	s := regexp.QuoteMeta(subject)
	return &noiseFilter{
		subject:          subject,
		headingYear:      regexp.MustCompile(`(20\d{2})\s+(?:Colorado\s+)?` + s),
		lineYear:         regexp.MustCompile(`^(20\d{2})\s+` + s),
		yearFromFilename: yearFromFilename,
	}
}

// Filter drops table-of-contents and methodology pages, page-number lines
// and blank lines, normalises what remains, and determines the year.
func (f *noiseFilter) Filter(doc *doctree.Document) ([]string, int, error) {
	var lines []string
	year := 0

	for _, page := range doc.Pages {
		if !page.Extracted() {
			continue
		}

		if isTOCPage(page.Lines) || isMethodologyPage(page.Lines) {
			if year == 0 {
				year = f.scrapeYear(strings.Join(page.Lines, "\n"))
			}
			continue
		}

		for _, line := range page.Lines {
			line = cleanLine(line)
			if line == "" || pageNumberPattern.MatchString(line) {
				continue
			}
			lines = append(lines, line)
		}
	}

	if year == 0 {
		for _, line := range lines {
			if m := f.lineYear.FindStringSubmatch(line); m != nil {
				year, _ = strconv.Atoi(m[1])
				break
			}
		}
	}

	if year == 0 && f.yearFromFilename {
		if m := filenameYearPattern.FindString(filepath.Base(doc.Name)); m != "" {
			year, _ = strconv.Atoi(m)
		}
	}

	if year == 0 {
		return nil, 0, &YearNotFoundError{Document: doc.Name}
	}
	return lines, year, nil
}

func (f *noiseFilter) scrapeYear(text string) int {
	m := f.headingYear.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	year, _ := strconv.Atoi(m[1])
	return year
}

// isTOCPage detects both the dot-leader contents pages of older reports and
// the "Contents" heading used from 2021 on.
func isTOCPage(lines []string) bool {
	leaders := 0
	for _, l := range lines {
		if tocLeaderPattern.MatchString(l) {
			leaders++
		}
	}
	if leaders > tocLeaderThreshold {
		return true
	}

	head := lines
	if len(head) > tocHeadingLines {
		head = head[:tocHeadingLines]
	}
	return strings.Contains(strings.Join(head, " "), "Contents")
}

func isMethodologyPage(lines []string) bool {
	text := strings.Join(lines, "\n")
	return strings.Contains(text, "Methodology") && strings.Contains(text, "stratified random")
}

// cleanLine trims, collapses internal whitespace and fixes spaced ordinals.
func cleanLine(line string) string {
	line = strings.Join(strings.Fields(line), " ")
	return NormalizeOrdinals(line)
}
