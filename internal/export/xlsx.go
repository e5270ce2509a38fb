package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/harvestparse/internal/harvest"
)

const (
	harvestSheet = "Harvest"
	dauSheet     = "DAU"
)

// XLSXName returns the workbook file name for a species.
func XLSXName(species string) string {
	return fmt.Sprintf("%s_harvest.xlsx", species)
}

// BuildXLSX returns a workbook (as bytes) with one sheet of flat harvest rows
// and one of DAU rows across all results, in the order given.
func BuildXLSX(results []*harvest.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", harvestSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(dauSheet); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(harvestSheet)
	f.SetActiveSheet(activeIndex)

	writeRow(f, harvestSheet, 1, stringValues(HarvestColumns))
	writeRow(f, dauSheet, 1, stringValues(DAUColumns))

	hrow, drow := 2, 2
	for _, res := range results {
		for _, r := range res.Harvest {
			writeRow(f, harvestSheet, hrow, harvestValues(r))
			hrow++
		}
		for _, r := range res.DAU {
			writeRow(f, dauSheet, drow, dauValues(r))
			drow++
		}
	}

	_ = f.SetColWidth(harvestSheet, "D", "F", 16) // method, season, license
	_ = f.SetColWidth(harvestSheet, "G", "G", 18) // table type

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteXLSX writes the workbook for results to path.
func WriteXLSX(path string, results []*harvest.Result) error {
	b, err := BuildXLSX(results)
	if err != nil {
		return err
	}
	return writeFile(path, b)
}

// writeRow sets one row starting at column A. Nil values leave the cell empty.
func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func stringValues(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
