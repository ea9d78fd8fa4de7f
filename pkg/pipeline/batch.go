package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 4

// BatchItem is the per-document outcome of a batch run. Failed items carry
// the error; the rest of the batch is unaffected.
type BatchItem struct {
	Path    string   `json:"path"`
	Summary *Summary `json:"summary,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// ProcessBatch processes the given files concurrently. Results come back
// in input order. A single failing file never aborts the batch; only
// context cancellation stops it early.
func (p *Pipeline) ProcessBatch(ctx context.Context, paths []string, concurrency int) ([]BatchItem, error) {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	items := make([]BatchItem, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		g.Go(func() error {
			items[i] = p.processPath(ctx, path)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return items, err
	}
	return items, nil
}

func (p *Pipeline) processPath(ctx context.Context, path string) BatchItem {
	item := BatchItem{Path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		item.Err = err.Error()
		return item
	}

	summary, err := p.ProcessFile(ctx, content, filepath.Base(path))
	if err != nil {
		item.Err = err.Error()
		return item
	}
	item.Summary = summary
	return item
}
