package model

import "fmt"

// DescriptorError reports a malformed test name or a missing companion file.
// It is surfaced per test at discovery time and never aborts discovery of
// the remaining tests.
type DescriptorError struct {
	// Path is the input file (or directory) the problem was found at
	Path string `json:"path"`
	// Segment is the offending dotted segment, when the problem is a tag
	Segment string `json:"segment,omitempty"`
	// Reason describes what was wrong
	Reason string `json:"reason"`
}

func (e *DescriptorError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("%s: segment %q: %s", e.Path, e.Segment, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// LaunchError reports that a subprocess could not be started at all
// (executable missing, permission denied). It is reported like a RUN failure
// but tagged separately so it is not confused with a nonzero exit.
type LaunchError struct {
	Executable string
	Err        error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Executable, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }
