package model

// Restart marks a test that runs twice: once normally, and once with an
// extra argument pair pointing at an artifact from the restart directory.
type Restart struct {
	// 1-based index into the sorted contents of the restart directory
	Index int `json:"index"`
}

// Descriptor is the parsed, immutable representation of one discovered test.
// It is created once at discovery time and never mutated afterwards.
type Descriptor struct {
	// Name is the identifier derived from the input file's base name
	// (everything before the first dotted tag).
	Name string `json:"name"`
	// InputPath is the path to the *.input file driving the test
	InputPath string `json:"input_path"`
	// OutputPath is the golden file the produced output is compared against
	OutputPath string `json:"output_path"`
	// ExecutablePath is the test binary, resolved by the discovery driver
	ExecutablePath string `json:"executable_path"`
	// ProcessCount is the number of capacity units the test occupies while
	// running (from the mpirun=X tag, default 1)
	ProcessCount int `json:"process_count"`
	// ExpectError marks a test whose executable is expected to exit nonzero
	ExpectError bool `json:"expect_error,omitempty"`
	// Restart is set when the test re-runs against a restart artifact
	Restart *Restart `json:"restart,omitempty"`
	// IgnoredTags holds dotted segments that carry no behavior
	IgnoredTags []string `json:"ignored_tags,omitempty"`
}
