package cli

// This file contains run recording functionality for saving run metadata
// and failing-test diagnostics to the history directory.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goldrun/goldrun/aggregator"
	"github.com/goldrun/goldrun/history"
	"github.com/goldrun/goldrun/model"
)

func (a *App) recordRun(record *model.RunRecord, agg *aggregator.Aggregator) error {
	// History lives under the repository root when inside git, next to the
	// working directory otherwise.
	base, err := history.RepoRoot()
	if err != nil {
		if base, err = os.Getwd(); err != nil {
			return err
		}
	} else if record.WorkDir != "" {
		// Store the working directory relative to the repo root
		if rel, rerr := filepath.Rel(base, record.WorkDir); rerr == nil {
			record.WorkDir = rel
		}
	}

	// Create directory .goldrun/history/<timestamp>-<commit>-<id>
	timestamp := record.Timestamp.Format("20060102-150405")
	shortCommit := "nogit"
	if record.Git != nil && record.Git.Commit != "" {
		shortCommit = record.Git.Commit
		if len(shortCommit) > 8 {
			shortCommit = shortCommit[:8]
		}
	}
	shortID := record.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	runName := fmt.Sprintf("%s-%s-%s", timestamp, shortCommit, shortID)
	runDir := filepath.Join(base, ".goldrun", "history", runName)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	// Write diagnostic heads of failing tests alongside the record
	for _, res := range agg.Failures() {
		if res.Diagnostics == nil {
			continue
		}
		diagPath := filepath.Join(runDir, res.Descriptor.Name+".diag.txt")
		text := res.Diagnostics.Stdout + res.Diagnostics.Stderr + res.Diagnostics.DiffOutput
		if err := os.WriteFile(diagPath, []byte(text), 0644); err != nil {
			a.logger.Warn().Err(err).Str("test", res.Descriptor.Name).Msg("Failed to write diagnostics")
		}
	}

	// Write run metadata
	recordPath := filepath.Join(runDir, history.RecordFileName)
	recordJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	if err := os.WriteFile(recordPath, recordJSON, 0644); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}

	a.logger.Debug().Str("dir", runDir).Str("id", record.ID).Msg("Recorded run")
	return nil
}
