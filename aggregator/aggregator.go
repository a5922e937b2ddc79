package aggregator

// This file contains the result collector: results arrive from
// concurrently-completing tests and are never mutated after being added.

import (
	"sync"

	"github.com/goldrun/goldrun/model"
)

// Aggregator accumulates TestResults in completion order. It is safe for
// concurrent use; every added result is counted exactly once.
type Aggregator struct {
	mu      sync.Mutex
	results []*model.TestResult
	skipped int
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Add records one completed test.
func (a *Aggregator) Add(res *model.TestResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, res)
}

// AddSkipped records tests that were queued but never admitted because the
// run was cancelled.
func (a *Aggregator) AddSkipped(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.skipped += n
}

// Results returns the collected results in completion order.
func (a *Aggregator) Results() []*model.TestResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*model.TestResult, len(a.results))
	copy(out, a.results)
	return out
}

// Failures returns the results whose overall outcome is not Pass, in
// completion order.
func (a *Aggregator) Failures() []*model.TestResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*model.TestResult
	for _, r := range a.results {
		if !r.Overall() {
			out = append(out, r)
		}
	}
	return out
}

// Counts summarizes the collected results.
func (a *Aggregator) Counts() model.Counts {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := model.Counts{Total: len(a.results), Skipped: a.skipped}
	for _, r := range a.results {
		switch {
		case r.Overall():
			c.Passed++
		case r.LaunchError != "":
			c.Errors++
		case r.RunStatus == model.RunTimedOut:
			c.TimedOut++
		default:
			c.Failed++
		}
	}
	return c
}

// ExitCode derives the whole-run exit code: zero iff every collected test
// passed and nothing was skipped.
func (a *Aggregator) ExitCode() int {
	c := a.Counts()
	if c.Failed > 0 || c.TimedOut > 0 || c.Errors > 0 || c.Skipped > 0 {
		return 1
	}
	return 0
}
