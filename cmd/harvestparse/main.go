package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "harvestparse",
		Short: "Elk harvest report parser",
		Long: `harvestparse turns the text of annual harvest report PDFs into
normalized per-unit harvest records and DAU population summaries.

It writes per-year CSV and JSON files, an optional combined JSON bundle
and XLSX workbook, and can keep every parsed year in a SQLite store.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(yearsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
