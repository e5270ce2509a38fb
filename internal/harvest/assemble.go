package harvest

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgallion1/harvestparse/internal/doctree"
)

const (
	DefaultSpecies    = "elk"
	DefaultSubject    = "Elk"
	DefaultSampleSize = 5
)

// Verbosity controls how much per-section detail the parser logs.
type Verbosity int

const (
	VerbosityQuiet  Verbosity = iota // empty-segment warnings only
	VerbosityNormal                  // plus one line per section
	VerbosityDebug                   // plus every unparsed line
)

// ParseVerbosity accepts "quiet", "normal" or "debug".
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet":
		return VerbosityQuiet, nil
	case "", "normal":
		return VerbosityNormal, nil
	case "debug":
		return VerbosityDebug, nil
	}
	return VerbosityNormal, fmt.Errorf("unknown verbosity %q", s)
}

func (v Verbosity) String() string {
	switch v {
	case VerbosityQuiet:
		return "quiet"
	case VerbosityDebug:
		return "debug"
	}
	return "normal"
}

// Options configures a Parser.
type Options struct {
	Species            string // record species tag; also names the title subject
	Verbosity          Verbosity
	SampleSize         int  // unparsed lines kept per empty-segment warning
	IgnoreFilenameYear bool // disable the last-resort year-from-filename lookup
	Logger             *slog.Logger
}

// Parser turns a document's page text into harvest and DAU records. A Parser
// holds no per-document state and may be shared.
type Parser struct {
	species    string
	verbosity  Verbosity
	sampleSize int
	noise      *noiseFilter
	split      *splitter
	log        *slog.Logger
}

func NewParser(opts Options) *Parser {
	if opts.Species == "" {
		opts.Species = DefaultSpecies
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	subject := cases.Title(language.English).String(opts.Species)
	return &Parser{
		species:    strings.ToLower(opts.Species),
		verbosity:  opts.Verbosity,
		sampleSize: opts.SampleSize,
		noise:      newNoiseFilter(subject, !opts.IgnoreFilenameYear),
		split:      &splitter{subject: subject},
		log:        opts.Logger,
	}
}

// Parse runs the full pipeline over one document. The only error it returns
// is a *YearNotFoundError; everything else is reported as warnings.
func (p *Parser) Parse(doc *doctree.Document) (*Result, error) {
	lines, year, err := p.noise.Filter(doc)
	if err != nil {
		return nil, err
	}
	segments := p.split.Split(lines, year)
	return p.Assemble(doc.Name, year, segments), nil
}

// Assemble parses each segment with its shape's grammar and tags the records
// with the segment's descriptor. Record order follows segment order, then
// line order.
func (p *Parser) Assemble(name string, year int, segments []Segment) *Result {
	log := p.log.With("document", name, "year", year)

	res := &Result{
		Document: name,
		Year:     year,
		Species:  p.species,
		Harvest:  []HarvestRecord{},
		DAU:      []DAURecord{},
		Sections: []SectionDetail{},
		Warnings: []Warning{},
	}

	for _, seg := range segments {
		d := seg.Descriptor
		parse := grammars[d.Shape]

		count := 0
		var unparsed []string
		for _, line := range seg.Lines {
			lm := parse(line)
			switch lm.kind {
			case lineRecord:
				if lm.dau != nil {
					rec := *lm.dau
					rec.Year, rec.Species = year, p.species
					res.DAU = append(res.DAU, rec)
				} else {
					res.Harvest = append(res.Harvest, p.harvestRecord(year, d, lm))
				}
				count++
			case lineFooter:
			default:
				if strings.TrimSpace(line) == "" || isHeaderLine(line) {
					continue
				}
				unparsed = append(unparsed, line)
				if p.verbosity >= VerbosityDebug {
					log.Debug("unparsed line", "type", d.Shape, "title", d.RawTitle, "line", line)
				}
			}
		}

		res.Sections = append(res.Sections, SectionDetail{
			Title:       truncate(d.RawTitle, 80),
			Shape:       d.Shape,
			Method:      d.Method,
			Season:      d.Season,
			LicenseType: d.LicenseType,
			RecordCount: count,
			Unparsed:    len(unparsed),
		})

		if d.Method == MethodUnknown {
			log.Warn("unclassifiable section", "type", d.Shape, "title", d.RawTitle)
			res.Warnings = append(res.Warnings, Warning{
				Kind:   WarnUnclassified,
				Title:  d.RawTitle,
				Shape:  d.Shape,
				Method: d.Method,
				Season: d.Season,
			})
		}

		if count == 0 && len(unparsed) > 0 {
			sample := unparsed
			if len(sample) > p.sampleSize {
				sample = sample[:p.sampleSize]
			}
			log.Warn("section produced no records",
				"type", d.Shape, "method", d.Method, "season", d.Season,
				"title", truncate(d.RawTitle, 60), "unparsed", len(unparsed))
			if p.verbosity >= VerbosityDebug {
				for _, l := range sample {
					log.Warn("unparsed sample", "title", truncate(d.RawTitle, 60), "line", l)
				}
			}
			res.Warnings = append(res.Warnings, Warning{
				Kind:           WarnEmptySegment,
				Title:          d.RawTitle,
				Shape:          d.Shape,
				Method:         d.Method,
				Season:         d.Season,
				UnparsedSample: append([]string(nil), sample...),
			})
		} else if count > 0 && p.verbosity >= VerbosityNormal {
			log.Info("section parsed", "type", d.Shape, "method", d.Method, "season", d.Season, "records", count)
		}
	}

	if p.verbosity >= VerbosityNormal {
		log.Info("document parsed",
			"sections", len(res.Sections),
			"harvest_records", len(res.Harvest),
			"dau_records", len(res.DAU),
			"warnings", len(res.Warnings))
	}
	return res
}

func (p *Parser) harvestRecord(year int, d Descriptor, lm lineMatch) HarvestRecord {
	rec := HarvestRecord{
		Year:         year,
		Species:      p.species,
		GMU:          lm.gmu,
		Method:       d.Method,
		Season:       d.Season,
		LicenseType:  d.LicenseType,
		Shape:        d.Shape,
		SectionTitle: d.RawTitle,
		RecDays:      lm.recDays,
		Success:      lm.success,
	}
	if lm.method != "" {
		rec.Method = lm.method
	}
	if lm.season != "" {
		rec.Season = lm.season
	}
	return rec
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
