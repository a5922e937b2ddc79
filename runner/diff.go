package runner

// This file contains the comparison collaborator: the external tool that
// decides whether produced output is within numeric tolerance of the golden
// file.

import (
	"context"
	"os/exec"
	"strconv"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog"
)

// DiffVerdict is the outcome of one golden-file comparison.
type DiffVerdict struct {
	// Match is true when the comparison tool found the files within
	// tolerance of each other
	Match bool
	// Output holds the tool's combined output, for diagnostics on mismatch
	Output string
}

// Differ compares a produced output file against a golden file.
type Differ interface {
	Compare(ctx context.Context, actualPath, goldenPath string) (*DiffVerdict, error)
}

// ExternalDiff shells out to a numdiff-style tool: exit zero means the
// files match within tolerance, nonzero means they diverge.
type ExternalDiff struct {
	Logger zerolog.Logger
	// Tool is the comparison command
	Tool string
	// Tolerance is the numeric tolerance passed to the tool
	Tolerance float64
}

// Compare invokes the external tool on (actual, golden). A tool that cannot
// be started at all is returned as an error, distinct from a mismatch.
func (d *ExternalDiff) Compare(ctx context.Context, actualPath, goldenPath string) (*DiffVerdict, error) {
	argv := []string{
		d.Tool, actualPath, goldenPath,
		"--tolerance", strconv.FormatFloat(d.Tolerance, 'g', -1, 64),
	}

	d.Logger.Debug().
		Str("command", shellescape.QuoteCommand(argv)).
		Msg("Comparing against golden file")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	output, err := cmd.CombinedOutput()
	if err == nil {
		return &DiffVerdict{Match: true, Output: string(output)}, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return &DiffVerdict{Match: false, Output: string(output)}, nil
	}
	return nil, err
}
