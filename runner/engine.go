package runner

// This file contains the per-test state machine: RUN, then RESTART when the
// descriptor asks for one, then DIFF. A failing stage is terminal; nothing
// is retried.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goldrun/goldrun/descriptor"
	"github.com/goldrun/goldrun/model"
	"github.com/rs/zerolog"
)

// restartDirName is the conventional subdirectory holding restart artifacts.
const restartDirName = "restart"

// headLines bounds the diagnostic output heads retained in verbose mode.
const headLines = 20

type stage int

const (
	stageRun stage = iota
	stageRestart
	stageDiff
	stageDone
)

// Engine runs one admitted test through its execution stages and produces
// its TestResult. Engines are stateless; one instance serves concurrent
// tests.
type Engine struct {
	Logger   zerolog.Logger
	Launcher Launcher
	Differ   Differ
	// Verbose retains captured output heads in the result diagnostics
	Verbose bool
	// Keep leaves the captured .actual file behind after the diff
	Keep bool
}

// Execute runs the full state machine for one test. All failure modes are
// contained in the returned result; Execute never panics the run.
func (e *Engine) Execute(ctx context.Context, d *model.Descriptor) *model.TestResult {
	start := time.Now()
	logger := e.Logger.With().Str("test", d.Name).Logger()

	res := &model.TestResult{
		Descriptor: d,
		RunStatus:  model.RunPassed,
		DiffStatus: model.DiffNotReached,
	}

	actualPath := strings.TrimSuffix(d.InputPath, descriptor.InputSuffix) + descriptor.ActualSuffix
	var lastStdout string

	for st := stageRun; st != stageDone; {
		switch st {
		case stageRun:
			launch, next := e.runStage(ctx, logger, d, []string{d.InputPath}, res)
			if launch != nil {
				lastStdout = launch.Stdout
			}
			if next == stageDone {
				st = stageDone
				break
			}
			if d.Restart != nil {
				st = stageRestart
			} else {
				st = stageDiff
			}

		case stageRestart:
			entry, err := resolveRestartEntry(d)
			if err != nil {
				logger.Warn().Err(err).Msg("Restart artifact resolution failed")
				res.RunStatus = model.RunFailed
				e.attachDiagnostics(res, "", err.Error(), "")
				st = stageDone
				break
			}

			args := []string{d.InputPath, "./" + restartDirName, entry}
			launch, next := e.runStage(ctx, logger, d, args, res)
			if launch != nil {
				lastStdout = launch.Stdout
			}
			if next == stageDone {
				st = stageDone
				break
			}
			st = stageDiff

		case stageDiff:
			e.diffStage(ctx, logger, d, actualPath, lastStdout, res)
			st = stageDone
		}
	}

	if !e.Keep {
		_ = os.Remove(actualPath)
	}

	res.Duration = time.Since(start)
	logger.Info().
		Str("run", string(res.RunStatus)).
		Str("diff", string(res.DiffStatus)).
		Bool("pass", res.Overall()).
		Dur("duration", res.Duration).
		Msg("Test finished")
	return res
}

// runStage executes one RUN or RESTART invocation and applies the exit-code
// rules. It returns stageDone when the stage outcome is terminal.
func (e *Engine) runStage(ctx context.Context, logger zerolog.Logger, d *model.Descriptor, args []string, res *model.TestResult) (*LaunchResult, stage) {
	launch, err := e.Launcher.Launch(ctx, d.ExecutablePath, args, d.ProcessCount)
	if err != nil {
		var lerr *model.LaunchError
		if errors.As(err, &lerr) {
			res.LaunchError = lerr.Error()
		} else {
			res.LaunchError = err.Error()
		}
		res.RunStatus = model.RunFailed
		logger.Warn().Err(err).Msg("Failed to launch test process")
		return nil, stageDone
	}

	switch {
	case launch.Cancelled:
		res.RunStatus = model.RunFailed
		e.attachDiagnostics(res, launch.Stdout, "run cancelled\n"+launch.Stderr, "")
		return launch, stageDone

	case launch.TimedOut:
		res.RunStatus = model.RunTimedOut
		e.attachDiagnostics(res, launch.Stdout, launch.Stderr, "")
		logger.Warn().Msg("Test exceeded wall-clock budget, process tree terminated")
		return launch, stageDone

	case launch.ExitCode == 0:
		return launch, stageDiff

	case d.ExpectError:
		res.RunStatus = model.RunExpectedError
		res.ExitCode = launch.ExitCode
		logger.Debug().Int("exit_code", launch.ExitCode).Msg("Nonzero exit expected by descriptor")
		return launch, stageDiff

	default:
		res.RunStatus = model.RunFailed
		res.ExitCode = launch.ExitCode
		e.attachDiagnostics(res, launch.Stdout, launch.Stderr, "")
		logger.Warn().Int("exit_code", launch.ExitCode).Msg("Test process failed")
		return launch, stageDone
	}
}

// diffStage writes the captured output next to the input file and hands it
// to the comparison collaborator.
func (e *Engine) diffStage(ctx context.Context, logger zerolog.Logger, d *model.Descriptor, actualPath, stdout string, res *model.TestResult) {
	if err := os.WriteFile(actualPath, []byte(stdout), 0644); err != nil {
		res.DiffStatus = model.DiffFailed
		e.attachDiagnostics(res, "", "", "failed to write captured output: "+err.Error())
		return
	}

	verdict, err := e.Differ.Compare(ctx, actualPath, d.OutputPath)
	if err != nil {
		res.DiffStatus = model.DiffFailed
		e.attachDiagnostics(res, "", "", "comparison tool error: "+err.Error())
		logger.Warn().Err(err).Msg("Comparison tool could not run")
		return
	}

	if verdict.Match {
		res.DiffStatus = model.DiffPassed
		return
	}
	res.DiffStatus = model.DiffFailed
	e.attachDiagnostics(res, "", "", verdict.Output)
	logger.Warn().Msg("Output outside tolerance of golden file")
}

func (e *Engine) attachDiagnostics(res *model.TestResult, stdout, stderr, diffOutput string) {
	if !e.Verbose {
		return
	}
	if res.Diagnostics == nil {
		res.Diagnostics = &model.Diagnostics{}
	}
	if stdout != "" {
		res.Diagnostics.Stdout = head(stdout)
	}
	if stderr != "" {
		res.Diagnostics.Stderr = head(stderr)
	}
	if diffOutput != "" {
		res.Diagnostics.DiffOutput = head(diffOutput)
	}
}

// resolveRestartEntry picks the Yth entry (1-based, sorted order) from the
// conventional restart directory next to the input file.
func resolveRestartEntry(d *model.Descriptor) (string, error) {
	dir := filepath.Join(filepath.Dir(d.InputPath), restartDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &model.DescriptorError{
			Path:   d.InputPath,
			Reason: "restart directory missing: " + err.Error(),
		}
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	idx := d.Restart.Index
	if idx > len(names) {
		return "", &model.DescriptorError{
			Path:   d.InputPath,
			Reason: "restart index out of range",
		}
	}
	return names[idx-1], nil
}

// head truncates captured output to its first few lines for diagnostics.
func head(s string) string {
	lines := strings.SplitN(s, "\n", headLines+1)
	if len(lines) <= headLines {
		return s
	}
	return strings.Join(lines[:headLines], "\n") + "\n...\n"
}
