package sema

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelMap applies fn to every element of in with at most maxConcurrency
// mappers in flight, preserving input order in the result slice. The first
// error encountered cancels the context passed to the remaining mappers and
// is returned with a nil slice.
//
// Grounded on the teacher's vtq.RunBatch bounded-worker shape, rebuilt on
// errgroup.SetLimit instead of a hand-rolled channel-and-waitgroup pair.
func ParallelMap[T, U any](ctx context.Context, in []T, maxConcurrency int, fn func(context.Context, T) (U, error)) ([]U, error) {
	out := make([]U, len(in))
	if len(in) == 0 {
		return out, nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i, item := range in {
		i, item := i, item
		g.Go(func() error {
			result, err := fn(gctx, item)
			if err != nil {
				return err
			}
			out[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
