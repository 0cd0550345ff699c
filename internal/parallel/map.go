// Package parallel runs independent jobs with bounded concurrency.
package parallel

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"
)

type result[D any] struct {
	d D
	e error
}

// Map applies mapFunc to every item with at most limit calls running at once.
// Results are yielded in the order of items, each as soon as it and all
// before it are done. Breaking out of the loop cancels the context of the
// calls still running and waits for them. Items not started before ctx is
// done yield the context error.
//
//	for result, err := range parallel.Map(ctx, 4, items, f) {}
func Map[E, D any](ctx context.Context, limit int, items []E, mapFunc func(context.Context, E) (D, error)) iter.Seq2[D, error] {
	return func(yield func(D, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		slots := make([]chan result[D], len(items))
		for i := range slots {
			slots[i] = make(chan result[D], 1)
		}

		var g errgroup.Group
		g.SetLimit(max(limit, 1))
		fed := make(chan struct{})
		go func() {
			defer close(fed)
			for i, item := range items {
				if err := ctx.Err(); err != nil {
					slots[i] <- result[D]{e: err}
					continue
				}
				g.Go(func() error {
					d, err := mapFunc(ctx, item)
					slots[i] <- result[D]{d: d, e: err}
					return nil
				})
			}
		}()
		defer func() {
			cancel()
			<-fed
			_ = g.Wait()
		}()

		for _, slot := range slots {
			r := <-slot
			if !yield(r.d, r.e) {
				return
			}
		}
	}
}
