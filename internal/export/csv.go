package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/harvestparse/internal/harvest"
)

// HarvestCSVName and DAUCSVName return the per-year CSV file names.
func HarvestCSVName(species string, year int) string {
	return fmt.Sprintf("%s_harvest_%d.csv", species, year)
}

func DAUCSVName(species string, year int) string {
	return fmt.Sprintf("%s_dau_summary_%d.csv", species, year)
}

// WriteCSV writes the flat harvest and DAU tables of one result into dir,
// creating it if needed. A table with no rows is not written and its
// returned path is empty.
func WriteCSV(dir string, res *harvest.Result) (harvestPath, dauPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	if len(res.Harvest) > 0 {
		harvestPath = filepath.Join(dir, HarvestCSVName(res.Species, res.Year))
		rows := make([][]string, 0, len(res.Harvest))
		for _, r := range res.Harvest {
			rows = append(rows, textRow(harvestValues(r)))
		}
		if err := writeCSVFile(harvestPath, HarvestColumns, rows); err != nil {
			return "", "", err
		}
	}

	if len(res.DAU) > 0 {
		dauPath = filepath.Join(dir, DAUCSVName(res.Species, res.Year))
		rows := make([][]string, 0, len(res.DAU))
		for _, r := range res.DAU {
			rows = append(rows, textRow(dauValues(r)))
		}
		if err := writeCSVFile(dauPath, DAUColumns, rows); err != nil {
			return harvestPath, "", err
		}
	}

	return harvestPath, dauPath, nil
}

func writeCSVFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return f.Close()
}
