package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goldrun/goldrun/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func newLauncher(timeout time.Duration) *MPILauncher {
	return &MPILauncher{Logger: zerolog.Nop(), Wrapper: "mpirun", Timeout: timeout}
}

func TestMPILauncher_CapturesOutputAndExitCode(t *testing.T) {
	script := writeScript(t, "solver", `echo "result 1.0"
echo "warning" >&2
exit 0
`)

	res, err := newLauncher(time.Minute).Launch(context.Background(), script, []string{"case.input"}, 1)
	require.NoError(t, err)
	require.Equal(t, 0, res.ExitCode)
	require.Equal(t, "result 1.0\n", res.Stdout)
	require.Equal(t, "warning\n", res.Stderr)
	require.False(t, res.TimedOut)
}

func TestMPILauncher_NonzeroExit(t *testing.T) {
	script := writeScript(t, "solver", "exit 7\n")

	res, err := newLauncher(time.Minute).Launch(context.Background(), script, nil, 1)
	require.NoError(t, err)
	require.Equal(t, 7, res.ExitCode)
}

func TestMPILauncher_MissingExecutable(t *testing.T) {
	_, err := newLauncher(time.Minute).Launch(context.Background(), "/nonexistent/solver", nil, 1)

	var lerr *model.LaunchError
	require.True(t, errors.As(err, &lerr))
	require.Equal(t, "/nonexistent/solver", lerr.Executable)
}

func TestMPILauncher_Timeout(t *testing.T) {
	script := writeScript(t, "solver", "sleep 30\n")

	start := time.Now()
	res, err := newLauncher(100*time.Millisecond).Launch(context.Background(), script, nil, 1)
	require.NoError(t, err)
	require.True(t, res.TimedOut)
	require.False(t, res.Cancelled)
	require.Less(t, time.Since(start), 5*time.Second, "process tree must be reclaimed promptly")
}

// The wall-clock budget applies to the subprocess, not the launcher: a
// process finishing just under the budget is not marked timed out.
func TestMPILauncher_FinishesUnderBudget(t *testing.T) {
	script := writeScript(t, "solver", "exit 0\n")

	res, err := newLauncher(10*time.Second).Launch(context.Background(), script, nil, 1)
	require.NoError(t, err)
	require.False(t, res.TimedOut)
	require.Equal(t, 0, res.ExitCode)
}

func TestMPILauncher_Cancellation(t *testing.T) {
	script := writeScript(t, "solver", "sleep 30\n")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	res, err := newLauncher(time.Minute).Launch(ctx, script, nil, 1)
	require.NoError(t, err)
	require.True(t, res.Cancelled)
	require.False(t, res.TimedOut)
}

// A fake wrapper script stands in for mpirun: multi-process launches must
// go through it with the -n <procs> prefix.
func TestMPILauncher_WrapsMultiProcessLaunches(t *testing.T) {
	wrapper := writeScript(t, "fakempirun", `echo "wrapper: $@"
`)
	l := &MPILauncher{Logger: zerolog.Nop(), Wrapper: wrapper, Timeout: time.Minute}

	res, err := l.Launch(context.Background(), "/bin/echo", []string{"case.input"}, 4)
	require.NoError(t, err)
	require.Equal(t, "wrapper: -n 4 /bin/echo case.input\n", res.Stdout)
}

func TestMPILauncher_SingleProcessSkipsWrapper(t *testing.T) {
	l := &MPILauncher{Logger: zerolog.Nop(), Wrapper: "/nonexistent/mpirun", Timeout: time.Minute}

	res, err := l.Launch(context.Background(), "/bin/echo", []string{"hello"}, 1)
	require.NoError(t, err)
	require.Equal(t, "hello\n", res.Stdout)
}

func TestMPILauncher_AlwaysForcesWrapper(t *testing.T) {
	wrapper := writeScript(t, "fakempirun", `echo "wrapper: $@"
`)
	l := &MPILauncher{Logger: zerolog.Nop(), Wrapper: wrapper, Always: true, Timeout: time.Minute}

	res, err := l.Launch(context.Background(), "/bin/echo", nil, 1)
	require.NoError(t, err)
	require.Equal(t, "wrapper: -n 1 /bin/echo\n", res.Stdout)
}
