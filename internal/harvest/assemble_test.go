package harvest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dgallion1/harvestparse/internal/doctree"
)

func quietParser() *Parser {
	return NewParser(Options{
		Verbosity: VerbosityDebug,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestParser_TwoSectionDocument(t *testing.T) {
	doc := &doctree.Document{Name: "2019_elk_harvest.pdf", Pages: []*doctree.Page{
		page(1,
			"2019 Elk Harvest, Hunters and Recreation Days for All Archery Seasons",
			"Unit Bulls Cows Calves Harvest Hunters Success Rec. Days",
			"201 50 120 10 180 300 60 900",
			"202 1,132 - 0 1,132 4,210 27 18,455",
			"Total 1,182 120 10 1,312 4,510 29 19,355",
		),
		page(2,
			"2019 Elk Percent Success for Limited Antlerless 2nd Season Rifle",
			"Antlered Antlered Antlered Antlerless Antlerless Antlerless",
			"201 40 100 40 30 90 33",
			"3",
		),
	}}

	res, err := quietParser().Parse(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Year != 2019 {
		t.Errorf("expected year 2019, got %d", res.Year)
	}
	if len(res.Harvest) != 3 {
		t.Fatalf("expected 3 records, got %d", len(res.Harvest))
	}
	if len(res.DAU) != 0 {
		t.Errorf("expected no DAU records, got %d", len(res.DAU))
	}

	gmus := []int{res.Harvest[0].GMU, res.Harvest[1].GMU, res.Harvest[2].GMU}
	if gmus[0] != 201 || gmus[1] != 202 || gmus[2] != 201 {
		t.Errorf("expected document order 201, 202, 201, got %v", gmus)
	}
	for _, r := range res.Harvest[:2] {
		if r.Method != "archery" || r.Season != "all" || r.LicenseType != "" || r.Shape != ShapeRecDays {
			t.Errorf("expected archery/all rec_days tags, got %+v", r)
		}
		if r.RecDays == nil || r.Success != nil {
			t.Errorf("expected a rec-days payload only, got %+v", r)
		}
	}
	last := res.Harvest[2]
	if last.Method != "rifle" || last.Season != "2nd" || last.LicenseType != "antlerless" || last.Shape != ShapePercentSuccess {
		t.Errorf("expected rifle/2nd/antlerless percent_success tags, got %+v", last)
	}
	if last.Success == nil || last.RecDays != nil {
		t.Errorf("expected a percent-success payload only, got %+v", last)
	}

	if len(res.Sections) != 2 {
		t.Fatalf("expected 2 section details, got %d", len(res.Sections))
	}
	if res.Sections[0].RecordCount != 2 || res.Sections[1].RecordCount != 1 {
		t.Errorf("expected record counts 2 and 1, got %d and %d", res.Sections[0].RecordCount, res.Sections[1].RecordCount)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", res.Warnings)
	}
}

func TestParser_RecDaysRoundTrip(t *testing.T) {
	d := Descriptor{Shape: ShapeRecDays, Method: "rifle", Season: "3rd", LicenseType: "either_sex", RawTitle: "t"}
	res := quietParser().Assemble("doc", 2020, []Segment{{Descriptor: d, Lines: []string{"201 50 120 10 180 300 60 900"}}})

	if len(res.Harvest) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Harvest))
	}
	r := res.Harvest[0]
	if r.GMU != 201 || r.Year != 2020 || r.Species != "elk" {
		t.Errorf("unexpected identity fields %+v", r)
	}
	want := RecDaysCounts{Bulls: 50, Cows: 120, Calves: 10, TotalHarvest: 180, TotalHunters: 300, PctSuccess: 60, TotalRecDays: 900}
	if *r.RecDays != want {
		t.Errorf("expected %+v, got %+v", want, *r.RecDays)
	}
	if r.Method != "rifle" || r.Season != "3rd" || r.LicenseType != "either_sex" {
		t.Errorf("expected descriptor tags copied verbatim, got %s/%s/%s", r.Method, r.Season, r.LicenseType)
	}
}

func TestParser_FooterIsNeitherRecordNorUnparsed(t *testing.T) {
	d := Descriptor{Shape: ShapeRecDays, Method: "archery", Season: "all", RawTitle: "footer only"}
	res := quietParser().Assemble("doc", 2020, []Segment{{Descriptor: d, Lines: []string{"Total 50 120 10 180 300 60 900"}}})

	if len(res.Harvest) != 0 {
		t.Errorf("expected no records, got %d", len(res.Harvest))
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", res.Warnings)
	}
	if res.Sections[0].Unparsed != 0 {
		t.Errorf("expected footer not to count as unparsed, got %d", res.Sections[0].Unparsed)
	}
}

func TestParser_EmptySegmentHasNoWarning(t *testing.T) {
	d := Descriptor{Shape: ShapePercentSuccess, Method: "archery", Season: "all", RawTitle: "empty"}
	res := quietParser().Assemble("doc", 2020, []Segment{{Descriptor: d, Lines: []string{"", "   ", "Success"}}})

	if len(res.Harvest) != 0 || len(res.Warnings) != 0 {
		t.Errorf("expected no records and no warnings, got %d records %+v", len(res.Harvest), res.Warnings)
	}
	if len(res.Sections) != 1 || res.Sections[0].RecordCount != 0 {
		t.Errorf("expected one zero-count section detail, got %+v", res.Sections)
	}
}

func TestParser_UnparsedSegmentWarnsOnce(t *testing.T) {
	title := "2021 Elk Harvest, Hunters and Recreation Days for All Archery Seasons"
	d := Descriptor{Shape: ShapeRecDays, Method: "archery", Season: "all", RawTitle: title}
	res := quietParser().Assemble("doc", 2021, []Segment{{Descriptor: d, Lines: []string{"201 50 120 10 180 300 60% 900"}}})

	if len(res.Harvest) != 0 {
		t.Errorf("expected no records, got %d", len(res.Harvest))
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected exactly 1 warning, got %d", len(res.Warnings))
	}
	w := res.Warnings[0]
	if w.Kind != WarnEmptySegment || w.Title != title {
		t.Errorf("expected empty_segment warning naming %q, got %+v", title, w)
	}
	if len(w.UnparsedSample) != 1 || w.UnparsedSample[0] != "201 50 120 10 180 300 60% 900" {
		t.Errorf("unexpected sample %q", w.UnparsedSample)
	}
}

func TestParser_SampleSizeBoundsWarning(t *testing.T) {
	p := NewParser(Options{SampleSize: 2, Verbosity: VerbosityQuiet, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	d := Descriptor{Shape: ShapeRecDays, Method: "archery", Season: "all", RawTitle: "drift"}
	res := p.Assemble("doc", 2021, []Segment{{Descriptor: d, Lines: []string{"a", "b", "c", "d"}}})

	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(res.Warnings))
	}
	if got := len(res.Warnings[0].UnparsedSample); got != 2 {
		t.Errorf("expected sample of 2, got %d", got)
	}
	if res.Sections[0].Unparsed != 4 {
		t.Errorf("expected 4 unparsed lines counted, got %d", res.Sections[0].Unparsed)
	}
}

func TestParser_DAUAndBosqueSections(t *testing.T) {
	doc := &doctree.Document{Name: "x.pdf", Pages: []*doctree.Page{
		page(1,
			"2020 Elk Harvest, Hunters and Recreation Days by DAU with Confidence Intervals",
			"DAU estimate SE LCL UCL estimate SE LCL UCL",
			"E-01 373 0 373 373 214 7 201 228 57% 1,652 33 1,589 1,718 0.97 0.64",
			"E-2 386 5 376 397 222 9 204 241 57.5 1792 59 1681 1911 0.959 0.552",
		),
		page(2,
			"2020 Elk Harvest, Hunters and Recreation Days for Bosque del Oso",
			"Season Bulls Cows Calves Harvest Hunters Success Rec. Days",
			"Archery 10 5 0 15 60 25 300",
			"1st Rifle 4 11 0 15 75 20 245",
			"Total 14 16 0 30 135 22 545",
		),
	}}

	res, err := quietParser().Parse(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.DAU) != 2 {
		t.Fatalf("expected 2 DAU records, got %d", len(res.DAU))
	}
	if res.DAU[0].DAU != "E-1" || res.DAU[1].DAU != "E-2" {
		t.Errorf("expected canonical DAU ids, got %q %q", res.DAU[0].DAU, res.DAU[1].DAU)
	}
	if res.DAU[0].Year != 2020 || res.DAU[0].Species != "elk" {
		t.Errorf("expected DAU records tagged with year and species, got %+v", res.DAU[0])
	}
	if len(res.Harvest) != 2 {
		t.Fatalf("expected 2 bosque records, got %d", len(res.Harvest))
	}
	if res.Harvest[0].Method != "bosque_archery" || res.Harvest[1].Season != "1st" {
		t.Errorf("unexpected bosque tags %+v %+v", res.Harvest[0], res.Harvest[1])
	}
	if res.Harvest[0].Shape != ShapeBosque || res.Harvest[0].GMU != BosqueGMU {
		t.Errorf("expected bosque shape on GMU 851, got %+v", res.Harvest[0])
	}
}

func TestParser_UnknownMethodIsKeptAndFlagged(t *testing.T) {
	doc := &doctree.Document{Name: "x.pdf", Pages: []*doctree.Page{
		page(1,
			"2020 Elk Harvest, Hunters and Recreation Days Confidence Intervals",
			"201 50 120 10 180 300 60 900",
		),
	}}
	res, err := quietParser().Parse(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Harvest) != 1 || res.Harvest[0].Method != MethodUnknown {
		t.Fatalf("expected one record with method unknown, got %+v", res.Harvest)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Kind != WarnUnclassified {
		t.Errorf("expected one unclassifiable warning, got %+v", res.Warnings)
	}
}

func TestParser_YearNotFoundIsFatal(t *testing.T) {
	p := NewParser(Options{IgnoreFilenameYear: true, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	_, err := p.Parse(&doctree.Document{Name: "2019.pdf", Pages: []*doctree.Page{page(1, "nothing here")}})
	if err == nil {
		t.Fatal("expected year-not-found error")
	}
}

func TestParseVerbosity(t *testing.T) {
	for in, want := range map[string]Verbosity{"quiet": VerbosityQuiet, "": VerbosityNormal, "DEBUG": VerbosityDebug} {
		got, err := ParseVerbosity(in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseVerbosity(%q): expected %v, got %v", in, want, got)
		}
	}
	if _, err := ParseVerbosity("loud"); err == nil {
		t.Error("expected error for unknown verbosity")
	}
}

func TestHarvestRecord_Flat(t *testing.T) {
	r := HarvestRecord{GMU: 1, Shape: ShapePercentSuccess, Success: &SuccessCounts{AntleredHarvest: 7}}
	f := r.Flat()
	if f.AntleredHarvest == nil || *f.AntleredHarvest != 7 {
		t.Errorf("expected antlered harvest 7, got %v", f.AntleredHarvest)
	}
	if f.Bulls != nil {
		t.Errorf("expected rec-days fields to be nil, got %v", *f.Bulls)
	}
}
