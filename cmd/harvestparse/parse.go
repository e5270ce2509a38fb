package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/harvestparse/internal/config"
	"github.com/dgallion1/harvestparse/internal/harvest"
	"github.com/dgallion1/harvestparse/internal/parser"
	"github.com/dgallion1/harvestparse/internal/pipeline"
	"github.com/dgallion1/harvestparse/internal/store"
)

const defaultOutputDir = "output"

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <files...> [output-dir]",
		Short: "Parse harvest report PDFs into records",
		Long: `Parse one or more harvest report documents (.pdf or .txt).

Arguments that are not .pdf or .txt files are ignored, except that a
trailing argument which is not an existing file names the output
directory when -o is not given.

Example:
  harvestparse parse reports/*.pdf -o out --xlsx
  harvestparse parse 2019.pdf 2020.pdf out --debug --db harvest.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyParseFlags(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			debug, _ := cmd.Flags().GetBool("debug")
			log := newLogger(debug)

			inputs, outDir, ignored := collectInputs(args, cfg.OutputDir)
			for _, a := range ignored {
				log.Warn("ignoring argument", "arg", a)
			}
			if len(inputs) == 0 {
				return fmt.Errorf("no .pdf or .txt inputs given")
			}
			if outDir == "" {
				outDir = defaultOutputDir
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var db *store.Store
			if cfg.DBPath != "" {
				db, err = store.Open(ctx, cfg.DBPath)
				if err != nil {
					return fmt.Errorf("open record store: %w", err)
				}
				defer db.Close()
			}

			opts := cfg.ParserOptions()
			opts.Logger = log
			worker := pipeline.NewWorker(harvest.NewParser(opts), db, nil, log, pipeline.WorkerConfig{
				PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
				OutputDir:            outDir,
			})

			log.Info("parsing", "documents", len(inputs), "workers", cfg.WorkerCount, "output_dir", outDir)
			outcomes := pipeline.RunBatch(ctx, worker, inputs, cfg.WorkerCount)

			failed := 0
			for _, o := range outcomes {
				if o.Err != nil {
					failed++
					log.Error("document failed", "path", o.Path, "error", o.Err)
					continue
				}
				fmt.Printf("%s: %d harvest records, %d DAU records, %d warnings (year %d)\n",
					filepath.Base(o.Path), len(o.Result.Harvest), len(o.Result.DAU), len(o.Result.Warnings), o.Result.Year)
			}

			written, err := pipeline.WriteBatchOutputs(outDir, cfg.Species, pipeline.Succeeded(outcomes), cfg.WriteXLSX)
			for _, p := range written {
				log.Info("wrote", "path", p)
			}
			if err != nil {
				return fmt.Errorf("write batch outputs: %w", err)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(inputs))
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output directory (default \"output\")")
	cmd.Flags().Bool("debug", false, "Log section classification and unparsed lines")
	cmd.Flags().Int("workers", 0, "Documents parsed concurrently (default from WORKER_COUNT)")
	cmd.Flags().Bool("xlsx", false, "Also write an XLSX workbook of all parsed years")
	cmd.Flags().String("db", "", "SQLite file to store parsed records in")
	cmd.Flags().String("species", "", "Species noun used in titles and file names (default elk)")
	return cmd
}

// applyParseFlags overlays explicitly set flags on the loaded configuration.
func applyParseFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("workers") {
		if n, _ := flags.GetInt("workers"); n > 0 {
			cfg.WorkerCount = n
		}
	}
	if flags.Changed("xlsx") {
		cfg.WriteXLSX, _ = flags.GetBool("xlsx")
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("species") {
		cfg.Species, _ = flags.GetString("species")
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.Verbosity = "debug"
	}
}

// collectInputs splits positional arguments into report paths and an output
// directory. outDir is the configured directory; when empty, a trailing
// argument that is neither a supported report nor an existing file takes
// its place.
func collectInputs(args []string, outDir string) (inputs []string, dir string, ignored []string) {
	dir = outDir
	for i, a := range args {
		if parser.IsSupportedExtension(a) {
			inputs = append(inputs, a)
			continue
		}
		if i == len(args)-1 && dir == "" && !isFile(a) {
			dir = a
			continue
		}
		ignored = append(ignored, a)
	}
	return inputs, dir, ignored
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
