package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/harvestparse/internal/export"
	"github.com/dgallion1/harvestparse/internal/harvest"
)

// Outcome is the result of processing one input of a batch: exactly one of
// Result or Err is set.
type Outcome struct {
	Path   string
	JobID  string
	Result *harvest.Result
	Err    error
}

// RunBatch processes paths with at most workers documents in flight and
// returns one outcome per path, in input order. A failure in one document
// never affects the others.
func RunBatch(ctx context.Context, w *Worker, paths []string, workers int) []Outcome {
	if workers <= 0 {
		workers = 1
	}
	outcomes := make([]Outcome, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		outcomes[i].Path = path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				outcomes[i].Err = fmt.Errorf("read %s: %w", path, err)
				return nil
			}
			job := NewJob(path, data)
			outcomes[i].JobID = job.ID
			if err := w.Process(gCtx, job); err != nil {
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].Result = job.Result()
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// Succeeded returns the results of the successful outcomes, in order.
func Succeeded(outcomes []Outcome) []*harvest.Result {
	var out []*harvest.Result
	for _, o := range outcomes {
		if o.Err == nil && o.Result != nil {
			out = append(out, o.Result)
		}
	}
	return out
}

// WriteBatchOutputs writes the cross-document outputs into dir: the combined
// JSON bundle when more than one document succeeded, and the XLSX workbook
// when xlsx is set. It returns the paths written.
func WriteBatchOutputs(dir, species string, results []*harvest.Result, xlsx bool) ([]string, error) {
	var written []string
	if len(results) > 1 {
		p := filepath.Join(dir, export.CombinedJSONName(species))
		if err := export.WriteCombinedJSON(p, species, results); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	if xlsx && len(results) > 0 {
		p := filepath.Join(dir, export.XLSXName(species))
		if err := export.WriteXLSX(p, results); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}
