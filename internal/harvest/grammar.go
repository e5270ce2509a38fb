package harvest

import (
	"regexp"
	"strconv"
	"strings"
)

// Column fragments. Counts accept comma grouping ("1,132"); a bare dash is zero.
const (
	countCol = `([\d,]+|-)`
	pctCol   = `(\d+|-)`
	rateCol  = `([\d.]+|-)`
	sep      = `\s+`
)

func columns(cols ...string) string {
	return strings.Join(cols, sep)
}

var (
	// Unit Bulls Cows Calves Harvest Hunters Success RecDays
	recDaysLinePattern = regexp.MustCompile(`^(\d+)` + sep +
		columns(countCol, countCol, countCol, countCol, countCol, pctCol, countCol) + `\s*$`)

	recDaysTotalPattern = regexp.MustCompile(`^Total` + sep +
		columns(countCol, countCol, countCol, countCol, countCol, pctCol, countCol) + `\s*$`)

	// Unit AntleredHarvest AntleredHunters Antlered% AntlerlessHarvest AntlerlessHunters Antlerless%
	successLinePattern = regexp.MustCompile(`^(\d+)` + sep +
		columns(countCol, countCol, pctCol, countCol, countCol, pctCol) + `\s*$`)

	successTotalPattern = regexp.MustCompile(`^Total` + sep +
		columns(countCol, countCol, pctCol, countCol, countCol, pctCol) + `\s*$`)

	// 2019-2020: E-1  386 5 376 397  222 9 204 241  57.5  1792 59 1681 1911  0.959 0.552
	// 2021+:     E-01 373 0 373 373  214 7 201 228  57%   1,652 33 1,589 1,718  0.97 0.64
	dauLinePattern = regexp.MustCompile(`^(E-\d{1,2})` + sep +
		columns(countCol, countCol, countCol, countCol) + sep +
		columns(countCol, countCol, countCol, countCol) + sep +
		rateCol + `%?` + sep +
		columns(countCol, countCol, countCol, countCol) + sep +
		columns(rateCol, rateCol) + `\s*$`)

	// Pre-2021 Bosque del Oso tables are by season rather than by unit.
	bosqueSeasonPattern = regexp.MustCompile(`^(Archery|Muzzleloader|1st Rifle|2nd Rifle|3rd Rifle|4th Rifle|Late Rifle|Total)` + sep +
		columns(countCol, countCol, countCol, countCol, countCol, pctCol, countCol) + `\s*$`)
)

// bosqueSeasons maps by-season row labels to (method, season).
var bosqueSeasons = map[string][2]string{
	"Archery":      {"archery", "all"},
	"Muzzleloader": {"muzzleloader", "all"},
	"1st Rifle":    {"rifle", "1st"},
	"2nd Rifle":    {"rifle", "2nd"},
	"3rd Rifle":    {"rifle", "3rd"},
	"4th Rifle":    {"rifle", "4th"},
	"Late Rifle":   {"rifle", "late"},
}

type lineKind int

const (
	lineUnparsed lineKind = iota
	lineRecord
	lineFooter
)

// lineMatch is the outcome of applying a grammar to one line. Method and
// Season, when set, override the owning section's descriptor.
type lineMatch struct {
	kind    lineKind
	gmu     int
	method  string
	season  string
	recDays *RecDaysCounts
	success *SuccessCounts
	dau     *DAURecord
}

// grammars holds one line grammar per table shape.
var grammars = map[TableShape]func(string) lineMatch{
	ShapeRecDays:        parseRecDaysLine,
	ShapePercentSuccess: parseSuccessLine,
	ShapeDAUSummary:     parseDAULine,
	ShapeBosque:         parseBosqueLine,
}

func parseRecDaysLine(line string) lineMatch {
	if m := recDaysLinePattern.FindStringSubmatch(line); m != nil {
		return lineMatch{kind: lineRecord, gmu: atoi(m[1]), recDays: recDaysCounts(m[2:])}
	}
	if recDaysTotalPattern.MatchString(line) {
		return lineMatch{kind: lineFooter}
	}
	return lineMatch{}
}

func parseSuccessLine(line string) lineMatch {
	if m := successLinePattern.FindStringSubmatch(line); m != nil {
		return lineMatch{kind: lineRecord, gmu: atoi(m[1]), success: &SuccessCounts{
			AntleredHarvest:      atoi(m[2]),
			AntleredHunters:      atoi(m[3]),
			AntleredPctSuccess:   atoi(m[4]),
			AntlerlessHarvest:    atoi(m[5]),
			AntlerlessHunters:    atoi(m[6]),
			AntlerlessPctSuccess: atoi(m[7]),
		}}
	}
	if successTotalPattern.MatchString(line) {
		return lineMatch{kind: lineFooter}
	}
	return lineMatch{}
}

func parseDAULine(line string) lineMatch {
	m := dauLinePattern.FindStringSubmatch(line)
	if m == nil {
		return lineMatch{}
	}
	return lineMatch{kind: lineRecord, dau: &DAURecord{
		DAU:          CanonicalDAU(m[1]),
		Hunters:      interval(m[2:6]),
		Harvest:      interval(m[6:10]),
		PctSuccess:   atof(m[10]),
		RecDays:      interval(m[11:15]),
		SampleRate:   atof(m[15]),
		ResponseRate: atof(m[16]),
	}}
}

// parseBosqueLine tries the by-season grammar first, then the by-unit
// grammar used from 2021 on.
func parseBosqueLine(line string) lineMatch {
	if m := bosqueSeasonPattern.FindStringSubmatch(line); m != nil {
		ms, ok := bosqueSeasons[m[1]]
		if !ok {
			return lineMatch{kind: lineFooter}
		}
		return lineMatch{
			kind:    lineRecord,
			gmu:     BosqueGMU,
			method:  "bosque_" + ms[0],
			season:  ms[1],
			recDays: recDaysCounts(m[2:]),
		}
	}

	lm := parseRecDaysLine(line)
	if lm.kind == lineRecord {
		lm.method, lm.season = "bosque_all", "all"
	}
	return lm
}

// CanonicalDAU strips leading zeros from a DAU id's number so that "E-01"
// and "E-1" compare equal.
func CanonicalDAU(raw string) string {
	prefix, num, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok {
		return raw
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return raw
	}
	return prefix + "-" + strconv.Itoa(n)
}

func recDaysCounts(m []string) *RecDaysCounts {
	return &RecDaysCounts{
		Bulls:        atoi(m[0]),
		Cows:         atoi(m[1]),
		Calves:       atoi(m[2]),
		TotalHarvest: atoi(m[3]),
		TotalHunters: atoi(m[4]),
		PctSuccess:   atoi(m[5]),
		TotalRecDays: atoi(m[6]),
	}
}

func interval(m []string) Interval {
	return Interval{Estimate: atoi(m[0]), SE: atoi(m[1]), LCL: atoi(m[2]), UCL: atoi(m[3])}
}

// atoi parses a count token. The grammars only hand it digits, commas or a
// dash, so a failed parse can only mean the dash.
func atoi(s string) int {
	n, _ := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	return f
}
