package cli

// This file contains the list command for displaying previous runs.

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goldrun/goldrun/history"
	"github.com/urfave/cli/v2"
)

func (a *App) list(ctx *cli.Context) error {
	limit := ctx.Int("limit")

	root, err := history.Root()
	if err != nil {
		return err
	}

	entries, err := history.LoadEntries(a.logger, root)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No recorded runs found")
		return nil
	}

	// Sort by timestamp (newest first)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Record.Timestamp.After(entries[j].Record.Timestamp)
	})

	display := entries
	if limit > 0 && limit < len(display) {
		display = display[:limit]
	}

	fmt.Printf("\n=== Runs (%d total) ===\n\n", len(entries))

	for _, entry := range display {
		rec := entry.Record
		timestamp := rec.Timestamp.Format("2006-01-02 15:04:05")
		duration := rec.Duration.Round(time.Millisecond)

		status := "✓"
		if rec.ExitCode != 0 {
			status = "✗"
		}

		shortID := rec.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		fmt.Printf("%s  %s  [%s]  exit=%d  id=%s\n", status, timestamp, duration, rec.ExitCode, shortID)
		fmt.Printf("   Tests: %d passed, %d failed, %d timed out, %d errors, %d skipped (of %d)\n",
			rec.Counts.Passed, rec.Counts.Failed, rec.Counts.TimedOut, rec.Counts.Errors,
			rec.Counts.Skipped, rec.Counts.Total)
		if len(rec.Args) > 1 {
			fmt.Printf("   Args: %s\n", strings.Join(rec.Args[1:], " "))
		}
		if rec.WorkDir != "" {
			fmt.Printf("   Path: %s\n", rec.WorkDir)
		}
		if rec.Git != nil && rec.Git.Commit != "" {
			shortCommit := rec.Git.Commit
			if len(shortCommit) > 8 {
				shortCommit = shortCommit[:8]
			}
			fmt.Printf("   Commit: %s", shortCommit)
			if rec.Git.Branch != "" {
				fmt.Printf(" (%s)", rec.Git.Branch)
			}
			fmt.Println()
		}
		fmt.Println()
	}

	return nil
}
