package runner

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestExternalDiff_Match(t *testing.T) {
	tool := writeScript(t, "fakediff", "exit 0\n")
	d := &ExternalDiff{Logger: zerolog.Nop(), Tool: tool, Tolerance: 1e-9}

	verdict, err := d.Compare(context.Background(), "a.actual", "a.output")
	require.NoError(t, err)
	require.True(t, verdict.Match)
}

func TestExternalDiff_Mismatch(t *testing.T) {
	tool := writeScript(t, "fakediff", `echo "line 3: 1.0 != 2.0"
exit 1
`)
	d := &ExternalDiff{Logger: zerolog.Nop(), Tool: tool, Tolerance: 1e-9}

	verdict, err := d.Compare(context.Background(), "a.actual", "a.output")
	require.NoError(t, err)
	require.False(t, verdict.Match)
	require.Contains(t, verdict.Output, "1.0 != 2.0")
}

func TestExternalDiff_PassesToleranceAndPaths(t *testing.T) {
	tool := writeScript(t, "fakediff", `echo "$@"
exit 0
`)
	d := &ExternalDiff{Logger: zerolog.Nop(), Tool: tool, Tolerance: 0.5}

	verdict, err := d.Compare(context.Background(), "x.actual", "x.output")
	require.NoError(t, err)
	require.Equal(t, "x.actual x.output --tolerance 0.5\n", verdict.Output)
}

func TestExternalDiff_ToolMissing(t *testing.T) {
	d := &ExternalDiff{Logger: zerolog.Nop(), Tool: "/nonexistent/numdiff", Tolerance: 1e-9}

	_, err := d.Compare(context.Background(), "a.actual", "a.output")
	require.Error(t, err)
}
