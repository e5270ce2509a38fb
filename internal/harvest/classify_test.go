package harvest

import (
	"testing"
)

func TestClassify_Cascade(t *testing.T) {
	tests := []struct {
		title   string
		shape   TableShape
		method  string
		season  string
		license string
	}{
		{"2019 Elk Harvest, Hunters and Recreation Days by DAU with Confidence Intervals", ShapeDAUSummary, "all", "all", ""},
		{"2022 Elk Hunters, Harvest and Recreation Days By DAU", ShapeDAUSummary, "all", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for Bosque del Oso", ShapeBosque, "bosque", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for Damage Hunts", ShapeRecDays, "damage", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for AFA and Auction Licenses", ShapeRecDays, "damage", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for Ranching for Wildlife", ShapeRecDays, "rfw", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for Early High Country Rifle", ShapeRecDays, "early_hc", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for Early PLO Seasons Only", ShapeRecDays, "plo_early", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for Late PLO Seasons Only", ShapeRecDays, "plo_late", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for Private Land Only Seasons", ShapeRecDays, "plo", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for Late Seasons", ShapeRecDays, "late", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for Late Seasons (Includes PLOs)", ShapeRecDays, "late_incl_plo", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for Limited Antlered 1st Season Rifle", ShapeRecDays, "rifle", "1st", "antlered"},
		{"2019 Elk Harvest, Hunters and Recreation Days for Limited Antlerless 2nd Season Rifle", ShapeRecDays, "rifle", "2nd", "antlerless"},
		{"2019 Elk Harvest, Hunters and Recreation Days for Limited Either-sex 3rd Split Rifle", ShapeRecDays, "rifle", "3rd_split", "either_sex"},
		{"2019 Elk Harvest, Hunters and Recreation Days for Limited Either Sex 4th Season", ShapeRecDays, "rifle", "4th", "either_sex"},
		{"2019 Elk Harvest, Hunters and Recreation Days for All Archery Seasons", ShapeRecDays, "archery", "all", ""},
		{"2019 Elk Percent Success for Muzzleloader Seasons", ShapePercentSuccess, "muzzleloader", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for Third Rifle Season", ShapeRecDays, "rifle", "3rd", ""},
		{"2019 Elk Percent Success for 2nd Rifle Season", ShapePercentSuccess, "rifle", "2nd", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for All Rifle Seasons", ShapeRecDays, "rifle", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days for All Manners of Take", ShapeRecDays, "all", "all", ""},
		{"2019 Elk Harvest, Hunters and Recreation Days Confidence Intervals", ShapeRecDays, MethodUnknown, "all", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			d, ok := Classify(tt.title)
			if !ok {
				t.Fatalf("expected %q to classify as a title", tt.title)
			}
			if d.Shape != tt.shape {
				t.Errorf("expected shape %q, got %q", tt.shape, d.Shape)
			}
			if d.Method != tt.method {
				t.Errorf("expected method %q, got %q", tt.method, d.Method)
			}
			if d.Season != tt.season {
				t.Errorf("expected season %q, got %q", tt.season, d.Season)
			}
			if d.LicenseType != tt.license {
				t.Errorf("expected license type %q, got %q", tt.license, d.LicenseType)
			}
			if d.RawTitle != tt.title {
				t.Errorf("expected raw title to be retained, got %q", d.RawTitle)
			}
		})
	}
}

func TestClassify_LimitedTakesPrecedenceOverRifle(t *testing.T) {
	d, ok := Classify("2020 Elk Percent Success for Limited Antlerless 2nd Season Rifle")
	if !ok {
		t.Fatal("expected title to classify")
	}
	if d.Method != "rifle" || d.LicenseType != "antlerless" || d.Season != "2nd" {
		t.Errorf("expected rifle/2nd/antlerless via the limited branch, got %s/%s/%s", d.Method, d.Season, d.LicenseType)
	}
}

func TestClassify_PLOBeforeLateSeasonsIsNotLate(t *testing.T) {
	d, ok := Classify("2019 Elk Harvest, Hunters and Recreation Days for PLO Late Seasons")
	if !ok {
		t.Fatal("expected title to classify")
	}
	if d.Method == "late" || d.Method == "late_incl_plo" {
		t.Errorf("expected PLO-qualified late seasons to skip the late branch, got %q", d.Method)
	}
}

func TestClassify_DAUBeatsBosque(t *testing.T) {
	d, _ := Classify("2019 Elk Recreation Days by DAU including Bosque del Oso")
	if d.Shape != ShapeDAUSummary {
		t.Errorf("expected dau_summary to win, got %q", d.Shape)
	}
}

func TestClassify_NotATitle(t *testing.T) {
	for _, line := range []string{
		"2019 Elk Harvest Summary",
		"201 50 120 10 180 300 60 900",
		"",
	} {
		if _, ok := Classify(line); ok {
			t.Errorf("expected %q not to classify", line)
		}
	}
}

func TestClassify_NeverLeavesMethodOrSeasonEmpty(t *testing.T) {
	titles := []string{
		"2019 Elk Harvest, Hunters and Recreation Days for Limited Antlered Rifle",
		"2019 Elk Percent Success",
		"2019 Elk Percent Success Limited Either-sex Split",
	}
	for _, title := range titles {
		d, ok := Classify(title)
		if !ok {
			t.Fatalf("expected %q to classify", title)
		}
		if d.Method == "" || d.Season == "" {
			t.Errorf("expected method and season to be set for %q, got %q/%q", title, d.Method, d.Season)
		}
	}
}

func TestRules_Order(t *testing.T) {
	rules := Rules()
	index := map[string]int{}
	for i, r := range rules {
		index[r] = i
	}
	before := [][2]string{
		{"dau_summary", "bosque"},
		{"bosque", "damage"},
		{"damage", "percent_success"},
		{"method:plo", "method:late"},
		{"method:limited", "method:rifle"},
		{"method:archery", "method:rifle"},
		{"method:rifle", "method:unknown"},
	}
	for _, pair := range before {
		a, okA := index[pair[0]]
		b, okB := index[pair[1]]
		if !okA || !okB {
			t.Fatalf("expected rules %q and %q to exist in %v", pair[0], pair[1], rules)
		}
		if a >= b {
			t.Errorf("expected %q to be evaluated before %q", pair[0], pair[1])
		}
	}
}
