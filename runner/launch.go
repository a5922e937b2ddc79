package runner

// This file contains the subprocess launcher: it prefixes the MPI wrapper
// for multi-process tests and enforces the wall-clock budget by killing the
// whole process group, so wrapper children die with their parent.

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/goldrun/goldrun/model"
	"github.com/rs/zerolog"
)

// LaunchResult is the outcome of one subprocess stage.
type LaunchResult struct {
	// ExitCode is the process exit code; meaningless when TimedOut or
	// Cancelled is set
	ExitCode int
	// Stdout and Stderr hold the full captured output
	Stdout string
	Stderr string
	// TimedOut is set when the wall-clock budget elapsed and the process
	// tree was forcibly terminated
	TimedOut bool
	// Cancelled is set when the run-wide context was cancelled
	Cancelled bool
}

// Launcher spawns one test process (or MPI process group) and waits for it.
type Launcher interface {
	Launch(ctx context.Context, executable string, args []string, procs int) (*LaunchResult, error)
}

// MPILauncher launches test executables directly, or under an mpirun-style
// wrapper when more than one process is requested.
type MPILauncher struct {
	Logger zerolog.Logger
	// Wrapper is the multi-process launch command (mpirun)
	Wrapper string
	// Always forces the wrapper prefix even for single-process tests
	Always bool
	// Timeout is the per-stage wall-clock budget
	Timeout time.Duration
}

// Launch runs one execution stage to completion. A spawn failure is
// returned as a *model.LaunchError; every other outcome, nonzero exits and
// timeouts included, is reported through the LaunchResult.
func (l *MPILauncher) Launch(ctx context.Context, executable string, args []string, procs int) (*LaunchResult, error) {
	argv := make([]string, 0, len(args)+4)
	if procs > 1 || l.Always {
		argv = append(argv, l.Wrapper, "-n", strconv.Itoa(procs))
	}
	argv = append(argv, executable)
	argv = append(argv, args...)

	runCtx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	cmd := exec.Command(argv[0], argv[1:]...)
	// New process group so a kill reaches the wrapper's children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	l.Logger.Debug().
		Str("command", shellescape.QuoteCommand(argv)).
		Dur("timeout", l.Timeout).
		Msg("Launching test process")

	if err := cmd.Start(); err != nil {
		return nil, &model.LaunchError{Executable: argv[0], Err: err}
	}

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()

	select {
	case err := <-waitDone:
		res := &LaunchResult{Stdout: stdoutBuf.String(), Stderr: stderrBuf.String()}
		if err != nil {
			exitErr, ok := err.(*exec.ExitError)
			if !ok {
				return nil, &model.LaunchError{Executable: argv[0], Err: err}
			}
			res.ExitCode = exitErr.ExitCode()
		}
		return res, nil

	case <-runCtx.Done():
		l.killProcessGroup(cmd)
		<-waitDone

		res := &LaunchResult{Stdout: stdoutBuf.String(), Stderr: stderrBuf.String()}
		if ctx.Err() != nil {
			res.Cancelled = true
		} else {
			res.TimedOut = true
		}
		return res, nil
	}
}

func (l *MPILauncher) killProcessGroup(cmd *exec.Cmd) {
	pid := cmd.Process.Pid
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		l.Logger.Debug().Err(err).Int("pid", pid).Msg("Process group kill failed, killing process directly")
		_ = cmd.Process.Kill()
	}
}
