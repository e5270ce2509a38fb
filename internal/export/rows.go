package export

import (
	"strconv"

	"github.com/dgallion1/harvestparse/internal/harvest"
)

// HarvestColumns is the header of the flat harvest table shared by the CSV
// and XLSX exports.
var HarvestColumns = []string{
	"year", "species", "gmu", "method", "season", "license_type", "table_type",
	"bulls", "cows", "calves", "total_harvest", "total_hunters", "pct_success", "total_rec_days",
	"antlered_harvest", "antlered_hunters", "antlered_pct_success",
	"antlerless_harvest", "antlerless_hunters", "antlerless_pct_success",
}

// DAUColumns is the header of the flat DAU table.
var DAUColumns = []string{
	"year", "species", "dau",
	"hunters_estimate", "hunters_se", "hunters_lcl", "hunters_ucl",
	"harvest_estimate", "harvest_se", "harvest_lcl", "harvest_ucl",
	"pct_success",
	"rec_days_estimate", "rec_days_se", "rec_days_lcl", "rec_days_ucl",
	"sample_rate", "response_rate",
}

// harvestValues returns one flat harvest row in HarvestColumns order. Unset
// payload fields are nil.
func harvestValues(r harvest.HarvestRecord) []any {
	f := r.Flat()
	return []any{
		f.Year, f.Species, f.GMU, f.Method, f.Season, f.LicenseType, f.TableType,
		optional(f.Bulls), optional(f.Cows), optional(f.Calves),
		optional(f.TotalHarvest), optional(f.TotalHunters), optional(f.PctSuccess), optional(f.TotalRecDays),
		optional(f.AntleredHarvest), optional(f.AntleredHunters), optional(f.AntleredPctSuccess),
		optional(f.AntlerlessHarvest), optional(f.AntlerlessHunters), optional(f.AntlerlessPctSuccess),
	}
}

func dauValues(r harvest.DAURecord) []any {
	return []any{
		r.Year, r.Species, r.DAU,
		r.Hunters.Estimate, r.Hunters.SE, r.Hunters.LCL, r.Hunters.UCL,
		r.Harvest.Estimate, r.Harvest.SE, r.Harvest.LCL, r.Harvest.UCL,
		r.PctSuccess,
		r.RecDays.Estimate, r.RecDays.SE, r.RecDays.LCL, r.RecDays.UCL,
		r.SampleRate, r.ResponseRate,
	}
}

func optional(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// text renders a cell value for CSV output; nil becomes an empty field.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}

func textRow(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = text(v)
	}
	return out
}
