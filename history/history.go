package history

// This file contains shared history utilities for loading and parsing
// recorded runs.

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/goldrun/goldrun/model"
	"github.com/rs/zerolog"
)

// RecordFileName is the per-run metadata file inside a history entry.
const RecordFileName = "run.json"

type Entry struct {
	Record   model.RunRecord
	FullPath string
}

// Root returns the .goldrun directory path from the git repository root,
// falling back to the current working directory when not inside a git
// repository.
func Root() (string, error) {
	base, err := repoRoot()
	if err != nil {
		if base, err = os.Getwd(); err != nil {
			return "", err
		}
	}
	root := filepath.Join(base, ".goldrun")

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return "", fmt.Errorf("no recorded runs found in %s", root)
	}
	return root, nil
}

// RepoRoot resolves the enclosing git repository root.
func RepoRoot() (string, error) {
	return repoRoot()
}

func repoRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// LoadEntries loads all recorded runs from the .goldrun directory.
func LoadEntries(logger zerolog.Logger, root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			recordPath := filepath.Join(path, RecordFileName)
			if _, err := os.Stat(recordPath); err == nil {
				record, err := parseRecord(recordPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", recordPath).Msg("Failed to parse run record")
					return nil
				}

				entries = append(entries, Entry{
					Record:   record,
					FullPath: path,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk .goldrun directory: %w", err)
	}

	return entries, nil
}

func parseRecord(recordPath string) (model.RunRecord, error) {
	data, err := os.ReadFile(recordPath)
	if err != nil {
		return model.RunRecord{}, err
	}

	var record model.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.RunRecord{}, err
	}

	return record, nil
}
