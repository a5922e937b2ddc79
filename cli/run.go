package cli

// This file contains the run orchestration: discovery, scheduling,
// aggregation, the summary report and history recording.

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goldrun/goldrun/aggregator"
	"github.com/goldrun/goldrun/descriptor"
	"github.com/goldrun/goldrun/model"
	"github.com/goldrun/goldrun/runner"
	"github.com/goldrun/goldrun/scheduler"
	"github.com/urfave/cli/v2"
)

func (a *App) run(ctx *cli.Context) error {
	startTime := time.Now()

	opts, err := a.resolveOptions(ctx)
	if err != nil {
		return err
	}

	root := ctx.Args().First()
	if root == "" {
		root = "."
	}

	// Generate random 16-byte run ID
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return fmt.Errorf("failed to generate run ID: %w", err)
	}
	runID := hex.EncodeToString(idBytes)

	record := &model.RunRecord{
		ID:        runID,
		Timestamp: startTime,
		Args:      os.Args,
		Jobs:      opts.Jobs,
	}
	if cwd, err := os.Getwd(); err == nil {
		record.WorkDir = cwd
	}
	// Capture git info (non-fatal if it fails)
	if commit, branch, err := a.getGitInfo(); err == nil {
		record.Git = &model.Git{Commit: commit, Branch: branch}
	}

	reg, err := descriptor.Discover(a.logger, root, descriptor.Options{
		Include:    opts.Include,
		Exclude:    opts.Exclude,
		Executable: opts.Executable,
	})
	if err != nil {
		return err
	}
	for _, problem := range reg.Problems {
		a.logger.Warn().Str("path", problem.Path).Msg(problem.Reason)
		record.Problems = append(record.Problems, problem.Error())
	}
	if len(reg.Tests) == 0 && len(reg.Problems) == 0 {
		a.logger.Warn().Str("root", root).Msg("No tests discovered")
	}

	// A user interrupt cancels admission and kills running process trees;
	// completed results are preserved and reported.
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := &runner.Engine{
		Logger: a.logger,
		Launcher: &runner.MPILauncher{
			Logger:  a.logger,
			Wrapper: opts.MPILauncher,
			Always:  opts.AlwaysMPI,
			Timeout: opts.Timeout,
		},
		Differ: &runner.ExternalDiff{
			Logger:    a.logger,
			Tool:      opts.DiffTool,
			Tolerance: opts.Tolerance,
		},
		Verbose: opts.Verbose,
		Keep:    opts.Keep,
	}

	agg := aggregator.New()
	sched := scheduler.New(a.logger, opts.Jobs)

	a.logger.Info().
		Int("tests", len(reg.Tests)).
		Int("jobs", opts.Jobs).
		Dur("timeout", opts.Timeout).
		Msg("Starting run")

	skipped := sched.Run(runCtx, reg.Tests, engine.Execute, agg.Add)
	agg.AddSkipped(len(skipped))

	exitCode := agg.ExitCode()
	if len(reg.Problems) > 0 {
		exitCode = 1
	}

	record.Duration = time.Since(startTime)
	record.ExitCode = exitCode
	record.Counts = agg.Counts()
	for _, res := range agg.Results() {
		record.Tests = append(record.Tests, model.TestOutcome{
			Name:           res.Descriptor.Name,
			ProcessCount:   res.Descriptor.ProcessCount,
			RunStatus:      res.RunStatus,
			DiffStatus:     res.DiffStatus,
			Overall:        res.Overall(),
			ExitCode:       res.ExitCode,
			DurationMillis: res.Duration.Milliseconds(),
		})
	}

	a.printSummary(agg, reg, opts.Verbose)

	// Record the run (non-fatal if it fails)
	if err := a.recordRun(record, agg); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record run")
	}

	if exitCode != 0 {
		return cli.Exit("", exitCode)
	}
	return nil
}
