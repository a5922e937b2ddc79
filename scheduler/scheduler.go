package scheduler

// This file contains the admission loop: a greedy first-fit scan over the
// ready queue in registry order, re-run every time capacity frees up.

import (
	"context"

	"github.com/goldrun/goldrun/model"
	"github.com/rs/zerolog"
)

// RunFunc executes one admitted test to completion and returns its result.
// Implementations must honor ctx cancellation by terminating the test's
// process tree and returning promptly.
type RunFunc func(ctx context.Context, d *model.Descriptor) *model.TestResult

// Scheduler admits discovered tests into execution without ever letting the
// sum of their process counts exceed the pool capacity, except for the
// lone-heavy-test borrow handled by the pool.
type Scheduler struct {
	logger zerolog.Logger
	pool   *Pool
}

// New creates a scheduler over a fresh pool of the given capacity.
func New(logger zerolog.Logger, capacity int) *Scheduler {
	return &Scheduler{
		logger: logger.With().Str("component", "scheduler").Logger(),
		pool:   NewPool(capacity),
	}
}

// Pool exposes the underlying slot pool, mainly for observability.
func (s *Scheduler) Pool() *Pool {
	return s.pool
}

type completion struct {
	result *model.TestResult
	weight int
}

// Run executes every test in the given registry order and streams each
// result to sink as it completes. Admission order among equally-fitting
// ready tests is strict queue order; completion order is unconstrained.
// When ctx is cancelled no further tests are admitted and the tests still
// queued are returned as skipped.
func (s *Scheduler) Run(ctx context.Context, tests []*model.Descriptor, run RunFunc, sink func(*model.TestResult)) []*model.Descriptor {
	queue := make([]*model.Descriptor, len(tests))
	copy(queue, tests)

	done := make(chan completion)
	inFlight := 0

	for len(queue) > 0 || inFlight > 0 {
		if ctx.Err() == nil {
			queue = s.admit(ctx, queue, run, done, &inFlight)
		} else if inFlight == 0 {
			break
		}

		c := <-done
		s.pool.Release(c.weight)
		inFlight--
		s.logger.Debug().
			Str("test", c.result.Descriptor.Name).
			Int("slots_in_use", s.pool.InUse()).
			Msg("Test completed, capacity released")
		sink(c.result)
	}

	if len(queue) > 0 {
		s.logger.Warn().Int("skipped", len(queue)).Msg("Run cancelled with tests still queued")
	}
	return queue
}

// admit performs one first-fit scan over the ready queue and starts every
// test that fits, preserving the relative order of the rest.
func (s *Scheduler) admit(ctx context.Context, queue []*model.Descriptor, run RunFunc, done chan<- completion, inFlight *int) []*model.Descriptor {
	remaining := queue[:0]
	for _, d := range queue {
		if !s.pool.TryAcquire(d.ProcessCount) {
			remaining = append(remaining, d)
			continue
		}

		*inFlight++
		s.logger.Debug().
			Str("test", d.Name).
			Int("procs", d.ProcessCount).
			Int("slots_in_use", s.pool.InUse()).
			Msg("Admitted test")

		go func(d *model.Descriptor) {
			done <- completion{result: run(ctx, d), weight: d.ProcessCount}
		}(d)
	}
	return remaining
}
