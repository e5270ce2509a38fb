package harvest

import (
	"strconv"
	"strings"
)

// titleTriggers are the phrases that, together with the year and subject
// noun, mark a line as a section title.
var titleTriggers = []string{"Recreation Days", "Percent Success", "Confidence"}

// headerPrefixes are column-heading fragments from every table era.
var headerPrefixes = []string{
	"Total Total",
	"Unit Bulls",
	"Unit Harvest",
	"Antlered Antlered",
	"Total Hunters",
	"Total Days",
	"Total Recreation",
	"DAU estimate",
	"Percent",
	"Season",
	"*",
}

// headerWords are single-word subheaders wrapped onto their own line.
var headerWords = map[string]bool{
	"Success":   true,
	"Rate":      true,
	"Intervals": true,
}

// isHeaderLine reports whether a line is table furniture rather than data.
func isHeaderLine(line string) bool {
	if headerWords[line] {
		return true
	}
	for _, p := range headerPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	// DAU map caption, which some years print between tables.
	return strings.Contains(line, "Data Analysis Unit") && strings.Contains(line, "Map")
}

// splitter partitions a line stream into segments, one per section title.
type splitter struct {
	subject string
}

// isTitle reports whether line is a section title for the given year.
func (s *splitter) isTitle(line, year string) bool {
	if !strings.HasPrefix(line, year) || !strings.Contains(line, s.subject) {
		return false
	}
	for _, t := range titleTriggers {
		if strings.Contains(line, t) {
			return true
		}
	}
	return false
}

// Split runs the splitter state machine. Lines before the first recognised
// title, or after a title that fails classification, are discarded.
func (s *splitter) Split(lines []string, year int) []Segment {
	yearStr := strconv.Itoa(year)

	var segments []Segment
	var current *Segment

	flush := func() {
		if current != nil {
			segments = append(segments, *current)
			current = nil
		}
	}

	for _, line := range lines {
		line = NormalizeOrdinals(line)

		if s.isTitle(line, yearStr) {
			flush()
			if d, ok := Classify(line); ok {
				current = &Segment{Descriptor: d}
			}
			continue
		}

		if isHeaderLine(line) || current == nil {
			continue
		}
		current.Lines = append(current.Lines, line)
	}
	flush()

	return segments
}

// Split partitions an elk report's filtered lines into segments.
func Split(lines []string, year int) []Segment {
	s := &splitter{subject: DefaultSubject}
	return s.Split(lines, year)
}
