package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/harvestparse/internal/export"
	"github.com/dgallion1/harvestparse/internal/harvest"
	"github.com/dgallion1/harvestparse/internal/parser"
	"github.com/dgallion1/harvestparse/internal/store"
)

// WorkerConfig selects the side effects of processing a document.
type WorkerConfig struct {
	PDFFallbackPdftotext bool
	OutputDir            string // per-year CSV and JSON are written here when set
}

// Worker processes a single report job. A Worker holds no per-job state and
// may be shared between goroutines.
type Worker struct {
	parser *harvest.Parser
	store  *store.Store
	stats  *Stats
	log    *slog.Logger
	cfg    WorkerConfig
}

// NewWorker builds a worker. db and stats may be nil.
func NewWorker(p *harvest.Parser, db *store.Store, stats *Stats, log *slog.Logger, cfg WorkerConfig) *Worker {
	return &Worker{
		parser: p,
		store:  db,
		stats:  stats,
		log:    log,
		cfg:    cfg,
	}
}

// Process runs extraction, parsing and export for a job. The returned error
// is also recorded on the job.
func (w *Worker) Process(ctx context.Context, job *Job) error {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	err := w.process(ctx, job, log)
	if w.stats != nil {
		w.stats.Record(time.Since(start).Milliseconds(), err != nil)
	}
	if err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, phaseOf(err))
		log.Error("job failed", "error", err)
		return err
	}
	job.SetStatus(StatusCompleted, "done")
	return nil
}

// phaseError tags an error with the phase it happened in.
type phaseError struct {
	phase string
	err   error
}

func (e *phaseError) Error() string { return e.phase + ": " + e.err.Error() }
func (e *phaseError) Unwrap() error { return e.err }

func phaseOf(err error) string {
	var pe *phaseError
	if errors.As(err, &pe) {
		return pe.phase
	}
	return "unknown"
}

func (w *Worker) process(ctx context.Context, job *Job, log *slog.Logger) error {
	// Phase 1: Extract page text
	job.SetStatus(StatusExtracting, "extracting")
	src, err := parser.ForFile(job.Filename, w.cfg.PDFFallbackPdftotext)
	if err != nil {
		return &phaseError{"extracting", err}
	}
	doc, err := src.Extract(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		return &phaseError{"extracting", err}
	}
	job.SetExtracted(len(doc.Pages), doc.LineCount())
	log.Info("extracted document", "pages", len(doc.Pages), "lines", doc.LineCount())

	if err := ctx.Err(); err != nil {
		return &phaseError{"extracting", err}
	}

	// Phase 2: Parse
	job.SetStatus(StatusParsing, "parsing")
	res, err := w.parser.Parse(doc)
	if err != nil {
		return &phaseError{"parsing", err}
	}
	job.SetResult(res)

	if err := ctx.Err(); err != nil {
		return &phaseError{"parsing", err}
	}

	// Phase 3: Export
	if w.cfg.OutputDir == "" && w.store == nil {
		return nil
	}
	job.SetStatus(StatusExporting, "exporting")
	if dir := w.cfg.OutputDir; dir != "" {
		hp, dp, err := export.WriteCSV(dir, res)
		if err != nil {
			return &phaseError{"exporting", err}
		}
		for _, p := range []string{hp, dp} {
			if p != "" {
				job.AddOutput(p)
				log.Info("wrote csv", "path", p)
			}
		}
		jp := filepath.Join(dir, export.JSONName(res.Species, res.Year))
		if err := export.WriteJSON(jp, res); err != nil {
			return &phaseError{"exporting", err}
		}
		job.AddOutput(jp)
		log.Info("wrote json", "path", jp)
	}
	if w.store != nil {
		runID, err := w.store.SaveResult(ctx, res)
		if err != nil {
			return &phaseError{"exporting", fmt.Errorf("store result: %w", err)}
		}
		log.Info("stored result", "run_id", runID, "year", res.Year)
	}
	return nil
}
