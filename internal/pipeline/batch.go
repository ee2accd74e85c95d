package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/verisight-ai/verisight/internal/evidence"
)

// Item is one image in a batch request.
type Item struct {
	Filename string
	Data     []byte
}

// BatchEntry is the per-image outcome. Exactly one of Result and Err is set.
// Entries keep the submission order.
type BatchEntry struct {
	Index    int
	Filename string
	Result   *evidence.AnalysisResult
	Err      error
}

// AnalyzeBatch processes up to maxBatch images, each through its own
// independent Analyze invocation, in parallel up to the worker cap. One
// image's failure never aborts its siblings. Cancellation stops not-yet-run
// entries (recorded as their error) while completed results are preserved.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, items []Item, opts Options) ([]BatchEntry, error) {
	if len(items) > p.maxBatch {
		return nil, fmt.Errorf("%w: %d files, limit is %d", ErrBatchTooLarge, len(items), p.maxBatch)
	}

	entries := make([]BatchEntry, len(items))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, item := range items {
		g.Go(func() error {
			entries[i] = BatchEntry{Index: i, Filename: item.Filename}
			if err := ctx.Err(); err != nil {
				entries[i].Err = err
				return nil
			}
			res, err := p.Analyze(ctx, item.Data, item.Filename, opts)
			if err != nil {
				entries[i].Err = err
				return nil
			}
			entries[i].Result = res
			return nil
		})
	}
	// Per-image errors live in the entries; the group itself never fails.
	_ = g.Wait()

	return entries, nil
}
