package model

import "time"

// RunRecord represents a single goldrun invocation, persisted to the
// history directory after every run.
type RunRecord struct {
	// Unique ID for this run (16 random bytes, hex encoded)
	ID string `json:"id"`
	// Timestamp when the run started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Working directory the run was started from (relative to repo root)
	WorkDir string `json:"workdir"`
	// Exit code of the whole run
	ExitCode int `json:"exit_code"`
	// Duration of the whole run
	Duration time.Duration `json:"duration"`
	// Jobs is the configured capacity in process slots
	Jobs int `json:"jobs"`
	// Git information, when available
	Git *Git `json:"git,omitempty"`
	// Counts summarizes the per-test outcomes
	Counts Counts `json:"counts"`
	// Tests lists the per-test outcomes in completion order
	Tests []TestOutcome `json:"tests,omitempty"`
	// Problems lists discovery-time descriptor errors
	Problems []string `json:"problems,omitempty"`
}

// Git contains git repository information captured at run time.
type Git struct {
	// Git commit hash at time of execution
	Commit string `json:"commit,omitempty"`
	// Git branch at time of execution
	Branch string `json:"branch,omitempty"`
}

// Counts is the aggregate view over all completed tests of one run.
type Counts struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	TimedOut int `json:"timed_out"`
	// Errors counts tests whose process could not be started
	Errors int `json:"errors"`
	// Skipped counts tests that were never admitted (run-wide cancellation)
	Skipped int `json:"skipped"`
}

// TestOutcome is the persisted per-test slice of a RunRecord.
type TestOutcome struct {
	Name           string     `json:"name"`
	ProcessCount   int        `json:"process_count"`
	RunStatus      RunStatus  `json:"run_status"`
	DiffStatus     DiffStatus `json:"diff_status"`
	Overall        bool       `json:"overall"`
	ExitCode       int        `json:"exit_code"`
	DurationMillis int64      `json:"duration_ms"`
}
