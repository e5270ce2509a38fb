package harvest

// TableShape identifies which column grammar a section uses.
type TableShape string

const (
	ShapeRecDays        TableShape = "rec_days"
	ShapePercentSuccess TableShape = "percent_success"
	ShapeDAUSummary     TableShape = "dau_summary"
	ShapeBosque         TableShape = "bosque"
)

// MethodUnknown tags sections whose title matched a shape trigger but no
// method branch.
const MethodUnknown = "unknown"

// BosqueGMU is the unit number the by-season Bosque del Oso rows belong to.
const BosqueGMU = 851

// Descriptor is the classification of one section title.
type Descriptor struct {
	Shape       TableShape `json:"table_type"`
	Method      string     `json:"method"`
	Season      string     `json:"season"`
	LicenseType string     `json:"license_type,omitempty"` // empty when the title names none
	RawTitle    string     `json:"title"`
}

// Segment is a run of data lines governed by one descriptor.
type Segment struct {
	Descriptor Descriptor
	Lines      []string
}

// RecDaysCounts is the payload of harvest / recreation-days tables.
type RecDaysCounts struct {
	Bulls        int `json:"bulls"`
	Cows         int `json:"cows"`
	Calves       int `json:"calves"`
	TotalHarvest int `json:"total_harvest"`
	TotalHunters int `json:"total_hunters"`
	PctSuccess   int `json:"pct_success"`
	TotalRecDays int `json:"total_rec_days"`
}

// SuccessCounts is the payload of percent-success tables.
type SuccessCounts struct {
	AntleredHarvest      int `json:"antlered_harvest"`
	AntleredHunters      int `json:"antlered_hunters"`
	AntleredPctSuccess   int `json:"antlered_pct_success"`
	AntlerlessHarvest    int `json:"antlerless_harvest"`
	AntlerlessHunters    int `json:"antlerless_hunters"`
	AntlerlessPctSuccess int `json:"antlerless_pct_success"`
}

// HarvestRecord is one GMU-level row. Exactly one of RecDays or Success is
// set: Success for percent_success sections, RecDays for every other shape.
type HarvestRecord struct {
	Year         int            `json:"year"`
	Species      string         `json:"species"`
	GMU          int            `json:"gmu"`
	Method       string         `json:"section_method"`
	Season       string         `json:"section_season"`
	LicenseType  string         `json:"section_license_type,omitempty"`
	Shape        TableShape     `json:"table_type"`
	SectionTitle string         `json:"section_title"`
	RecDays      *RecDaysCounts `json:"rec_days,omitempty"`
	Success      *SuccessCounts `json:"percent_success,omitempty"`
}

// Interval is an estimate with its standard error and confidence bounds.
type Interval struct {
	Estimate int `json:"estimate"`
	SE       int `json:"se"`
	LCL      int `json:"lcl"`
	UCL      int `json:"ucl"`
}

// DAURecord is one data-analysis-unit aggregate row.
type DAURecord struct {
	Year         int      `json:"year"`
	Species      string   `json:"species"`
	DAU          string   `json:"dau"`
	Hunters      Interval `json:"hunters"`
	Harvest      Interval `json:"harvest"`
	RecDays      Interval `json:"rec_days"`
	PctSuccess   float64  `json:"pct_success"`
	SampleRate   float64  `json:"sample_rate"`
	ResponseRate float64  `json:"response_rate"`
}

// SectionDetail summarises one parsed segment for observability.
type SectionDetail struct {
	Title       string     `json:"title"`
	Shape       TableShape `json:"type"`
	Method      string     `json:"method"`
	Season      string     `json:"season"`
	LicenseType string     `json:"license_type,omitempty"`
	RecordCount int        `json:"records"`
	Unparsed    int        `json:"unparsed"`
}

// WarningKind names a non-fatal diagnostic.
type WarningKind string

const (
	WarnEmptySegment WarningKind = "empty_segment"
	WarnUnclassified WarningKind = "unclassifiable_section"
)

// Warning is a non-fatal diagnostic attached to a result.
type Warning struct {
	Kind           WarningKind `json:"kind"`
	Title          string      `json:"title"`
	Shape          TableShape  `json:"type"`
	Method         string      `json:"method"`
	Season         string      `json:"season"`
	UnparsedSample []string    `json:"unparsed_sample,omitempty"`
}

// Result is everything parsed out of one document.
type Result struct {
	Document string          `json:"source_file"`
	Year     int             `json:"year"`
	Species  string          `json:"species"`
	Harvest  []HarvestRecord `json:"harvest_records"`
	DAU      []DAURecord     `json:"dau_records"`
	Sections []SectionDetail `json:"sections_detail"`
	Warnings []Warning       `json:"warnings"`
}

// FlatHarvest is the flat row used by tabular exports. Fields of the unused
// payload are nil.
type FlatHarvest struct {
	Year                 int    `json:"year"`
	Species              string `json:"species"`
	GMU                  int    `json:"gmu"`
	Method               string `json:"method"`
	Season               string `json:"season"`
	LicenseType          string `json:"license_type"`
	TableType            string `json:"table_type"`
	Bulls                *int   `json:"bulls"`
	Cows                 *int   `json:"cows"`
	Calves               *int   `json:"calves"`
	TotalHarvest         *int   `json:"total_harvest"`
	TotalHunters         *int   `json:"total_hunters"`
	PctSuccess           *int   `json:"pct_success"`
	TotalRecDays         *int   `json:"total_rec_days"`
	AntleredHarvest      *int   `json:"antlered_harvest"`
	AntleredHunters      *int   `json:"antlered_hunters"`
	AntleredPctSuccess   *int   `json:"antlered_pct_success"`
	AntlerlessHarvest    *int   `json:"antlerless_harvest"`
	AntlerlessHunters    *int   `json:"antlerless_hunters"`
	AntlerlessPctSuccess *int   `json:"antlerless_pct_success"`
}

// Flat projects the record into a FlatHarvest row.
func (r HarvestRecord) Flat() FlatHarvest {
	f := FlatHarvest{
		Year:        r.Year,
		Species:     r.Species,
		GMU:         r.GMU,
		Method:      r.Method,
		Season:      r.Season,
		LicenseType: r.LicenseType,
		TableType:   string(r.Shape),
	}
	if c := r.RecDays; c != nil {
		f.Bulls, f.Cows, f.Calves = intPtr(c.Bulls), intPtr(c.Cows), intPtr(c.Calves)
		f.TotalHarvest, f.TotalHunters = intPtr(c.TotalHarvest), intPtr(c.TotalHunters)
		f.PctSuccess, f.TotalRecDays = intPtr(c.PctSuccess), intPtr(c.TotalRecDays)
	}
	if c := r.Success; c != nil {
		f.AntleredHarvest, f.AntleredHunters = intPtr(c.AntleredHarvest), intPtr(c.AntleredHunters)
		f.AntleredPctSuccess = intPtr(c.AntleredPctSuccess)
		f.AntlerlessHarvest, f.AntlerlessHunters = intPtr(c.AntlerlessHarvest), intPtr(c.AntlerlessHunters)
		f.AntlerlessPctSuccess = intPtr(c.AntlerlessPctSuccess)
	}
	return f
}

func intPtr(n int) *int { return &n }
