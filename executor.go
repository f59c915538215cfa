package forge

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Executor dispatches one wave's systems to run concurrently.
// golang.org/x/sync/errgroup is the idiomatic Go scoped fork-join task
// group: every task spawned inside a Run call has completed (or the first
// panic has surfaced) before Run returns.
type Executor interface {
	Run(ctx context.Context, tasks []func())
}

// DefaultExecutor runs a wave's tasks on an errgroup capped at n concurrent
// goroutines — forge's fixed thread pool.
type DefaultExecutor struct {
	limit int
}

// NewDefaultExecutor returns an Executor that runs up to n systems of a
// wave concurrently.
func NewDefaultExecutor(n int) *DefaultExecutor {
	if n < 1 {
		n = 1
	}
	return &DefaultExecutor{limit: n}
}

// Run blocks until every task has completed. A task panic (a ProgramBug
// raised by a system) propagates out of Wait and aborts the frame: there is
// no cancellation path except a system panicking.
func (e *DefaultExecutor) Run(ctx context.Context, tasks []func()) {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			task()
			return nil
		})
	}
	_ = g.Wait()
}
