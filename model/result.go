package model

import "time"

// RunStatus is the outcome of the RUN (and, when present, RESTART) stage.
type RunStatus string

const (
	// RunPassed means every execution stage exited zero
	RunPassed RunStatus = "passed"
	// RunFailed means a stage exited nonzero without expect_error, or the
	// process could not be started at all
	RunFailed RunStatus = "failed"
	// RunTimedOut means the wall-clock budget elapsed and the process tree
	// was forcibly terminated
	RunTimedOut RunStatus = "timed_out"
	// RunExpectedError means a stage exited nonzero and the descriptor
	// declared expect_error=True
	RunExpectedError RunStatus = "expected_error"
)

// Success reports whether the status allows the DIFF stage to run.
func (s RunStatus) Success() bool {
	return s == RunPassed || s == RunExpectedError
}

// DiffStatus is the outcome of the golden-file comparison stage.
type DiffStatus string

const (
	// DiffNotReached means an earlier stage failed and no comparison ran
	DiffNotReached DiffStatus = "not_reached"
	// DiffPassed means the comparison tool found the output within tolerance
	DiffPassed DiffStatus = "passed"
	// DiffFailed means the output diverged from the golden file, or the
	// comparison tool itself could not run
	DiffFailed DiffStatus = "failed"
)

// Diagnostics holds captured output heads for triage. It is populated only
// when verbose reporting is requested.
type Diagnostics struct {
	// Stdout is the head of the captured standard output
	Stdout string `json:"stdout,omitempty"`
	// Stderr is the head of the captured standard error
	Stderr string `json:"stderr,omitempty"`
	// DiffOutput is the head of the comparison tool's output
	DiffOutput string `json:"diff_output,omitempty"`
}

// TestResult is produced exactly once per executed test and never mutated
// after it is handed to the aggregator.
type TestResult struct {
	// Descriptor is a back-reference to the test that produced this result
	Descriptor *Descriptor `json:"-"`
	// RunStatus is the execution-stage outcome
	RunStatus RunStatus `json:"run_status"`
	// DiffStatus is the comparison-stage outcome
	DiffStatus DiffStatus `json:"diff_status"`
	// ExitCode is the exit code of the last execution stage that ran
	ExitCode int `json:"exit_code"`
	// LaunchError distinguishes "the process could not be started" from a
	// legitimate nonzero exit; empty when the process spawned normally
	LaunchError string `json:"launch_error,omitempty"`
	// Duration is the wall-clock time from admission to completion
	Duration time.Duration `json:"duration"`
	// Diagnostics carries captured output heads in verbose mode
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

// Overall reports whether the test passed: the execution stages must have
// succeeded and the produced output must be within tolerance of the golden
// file.
func (r *TestResult) Overall() bool {
	return r.RunStatus.Success() && r.DiffStatus == DiffPassed
}
