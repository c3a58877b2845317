package harmonize

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RunBatch runs independent inputs concurrently, at most limit at a time
// (limit <= 0 means no bound). Results are index-aligned with inputs. The
// first error cancels runs that have not started yet.
func RunBatch(ctx context.Context, inputs []Input, limit int) ([]*Result, error) {
	results := make([]*Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Run(in)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
