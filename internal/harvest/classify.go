package harvest

import (
	"regexp"
	"strings"
)

// sectionRule maps a title predicate to a complete descriptor. These titles
// bypass the method cascade entirely.
type sectionRule struct {
	name   string
	match  func(title string) bool
	shape  TableShape
	method string
}

// shapeRule maps a title predicate to a table shape whose method and season
// still need to be resolved by methodRules.
type shapeRule struct {
	name  string
	match func(title string) bool
	shape TableShape
}

// methodRule fills in method, season and license type. The first rule whose
// predicate matches wins.
type methodRule struct {
	name  string
	match func(title string) bool
	apply func(title string, d *Descriptor)
}

// Order matters in all three tables: titles routinely carry more than one
// trigger keyword.
var (
	sectionRules = []sectionRule{
		{"dau_summary", containsAny("By DAU", "by DAU", "DAU with", "DAU w "), ShapeDAUSummary, "all"},
		{"bosque", containsAny("Bosque del Oso"), ShapeBosque, "bosque"},
		{"damage", containsAny("Damage", "AFA", "Auction"), ShapeRecDays, "damage"},
	}

	shapeRules = []shapeRule{
		{"percent_success", containsAny("Percent Success"), ShapePercentSuccess},
		{"rec_days", containsAny("Recreation Days", "Confidence"), ShapeRecDays},
	}

	methodRules = []methodRule{
		{"rfw", containsAny("Ranching for Wildlife"), fixed("rfw")},
		{"early_hc", containsAny("Early High Country"), fixed("early_hc")},
		{"plo", containsAny("PLO Seasons Only", "Private Land Only"), applyPLO},
		{"late", isLateSeason, applyLate},
		{"limited", containsAny("Limited"), applyLimited},
		{"archery", containsAny("Archery"), fixed("archery")},
		{"muzzleloader", containsAny("Muzzleloader", "Muzzle"), fixed("muzzleloader")},
		{"rifle", containsAny("Rifle"), applyRifle},
		{"all_manners", containsAny("All Manners"), fixed("all")},
		{MethodUnknown, func(string) bool { return true }, fixed(MethodUnknown)},
	}

	limitedSplitPattern  = regexp.MustCompile(`(\d)(?:st|nd|rd|th)\s+Split`)
	limitedSeasonPattern = regexp.MustCompile(`(\d)(?:st|nd|rd|th)\s+Season`)

	// rifleSeasons is checked in order; the first ordinal present wins.
	rifleSeasons = []struct {
		season string
		tokens []string
	}{
		{"1st", []string{"First", "1st"}},
		{"2nd", []string{"Second", "2nd"}},
		{"3rd", []string{"Third", "3rd"}},
		{"4th", []string{"Fourth", "4th"}},
	}
)

// Classify maps a section title to its descriptor. It returns false when the
// line carries none of the shape triggers and is therefore not a title.
func Classify(title string) (Descriptor, bool) {
	t := strings.TrimSpace(title)

	for _, r := range sectionRules {
		if r.match(t) {
			return Descriptor{Shape: r.shape, Method: r.method, Season: "all", RawTitle: t}, true
		}
	}

	d := Descriptor{RawTitle: t}
	for _, r := range shapeRules {
		if r.match(t) {
			d.Shape = r.shape
			break
		}
	}
	if d.Shape == "" {
		return Descriptor{}, false
	}

	for _, r := range methodRules {
		if r.match(t) {
			r.apply(t, &d)
			break
		}
	}
	if d.Season == "" {
		d.Season = "all"
	}
	return d, true
}

// Rules lists the classifier's rule names in the order they are evaluated.
func Rules() []string {
	var names []string
	for _, r := range sectionRules {
		names = append(names, r.name)
	}
	for _, r := range shapeRules {
		names = append(names, r.name)
	}
	for _, r := range methodRules {
		names = append(names, "method:"+r.name)
	}
	return names
}

func containsAny(subs ...string) func(string) bool {
	return func(t string) bool {
		for _, s := range subs {
			if strings.Contains(t, s) {
				return true
			}
		}
		return false
	}
}

func fixed(method string) func(string, *Descriptor) {
	return func(_ string, d *Descriptor) {
		d.Method = method
		d.Season = "all"
	}
}

func applyPLO(t string, d *Descriptor) {
	switch {
	case strings.Contains(t, "Early PLO"):
		d.Method = "plo_early"
	case strings.Contains(t, "Late PLO"):
		d.Method = "plo_late"
	default:
		d.Method = "plo"
	}
	d.Season = "all"
}

// isLateSeason matches "Late Seasons" unless a PLO qualifier precedes it.
func isLateSeason(t string) bool {
	before, _, found := strings.Cut(t, "Late Seasons")
	return found && !strings.Contains(before, "PLO")
}

func applyLate(t string, d *Descriptor) {
	d.Method = "late"
	if strings.Contains(t, "Includes PLOs") {
		d.Method = "late_incl_plo"
	}
	d.Season = "all"
}

// applyLimited handles limited-license rifle seasons, which carry a license
// type and an explicit season or split number.
func applyLimited(t string, d *Descriptor) {
	d.Method = "rifle"

	switch {
	case strings.Contains(t, "Antlered") && !strings.Contains(t, "Antlerless"):
		d.LicenseType = "antlered"
	case strings.Contains(t, "Antlerless"):
		d.LicenseType = "antlerless"
	case strings.Contains(t, "Either-sex"), strings.Contains(t, "Either Sex"):
		d.LicenseType = "either_sex"
	}

	if strings.Contains(t, "Split") {
		if m := limitedSplitPattern.FindStringSubmatch(t); m != nil {
			d.Season = ordinal(m[1]) + "_split"
		}
	} else if m := limitedSeasonPattern.FindStringSubmatch(t); m != nil {
		d.Season = ordinal(m[1])
	}
}

func applyRifle(t string, d *Descriptor) {
	d.Method = "rifle"
	d.Season = "all"
	for _, rs := range rifleSeasons {
		if containsAny(rs.tokens...)(t) {
			d.Season = rs.season
			return
		}
	}
}

func ordinal(digit string) string {
	switch digit {
	case "1":
		return "1st"
	case "2":
		return "2nd"
	case "3":
		return "3rd"
	}
	return digit + "th"
}
