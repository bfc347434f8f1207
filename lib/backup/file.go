// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bureau-foundation/teller/lib/ledger"
)

const (
	filePrefix = "teller-"
	fileSuffix = ".bak"
	timeLayout = "20060102T150405Z"
)

// FileName is the archive name for a snapshot taken at takenAt. Names
// sort chronologically.
func FileName(takenAt time.Time) string {
	return filePrefix + takenAt.UTC().Format(timeLayout) + fileSuffix
}

// WriteFile writes an archive to a temporary file beside path, syncs
// it and renames it into place. A failed write leaves nothing behind.
func WriteFile(path string, snapshot ledger.Snapshot, options WriteOptions) (Summary, error) {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return Summary{}, err
	}
	temporary, err := os.CreateTemp(directory, ".teller-backup-*")
	if err != nil {
		return Summary{}, err
	}
	defer os.Remove(temporary.Name())

	summary, err := Write(temporary, snapshot, options)
	if err == nil {
		err = temporary.Sync()
	}
	if closeErr := temporary.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return summary, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		return summary, fmt.Errorf("installing %s: %w", path, err)
	}
	return summary, nil
}

// Prune deletes all but the newest keep archives named by FileName in
// directory and returns the removed paths. keep below one keeps
// everything.
func Prune(directory string, keep int) ([]string, error) {
	if keep < 1 {
		return nil, nil
	}
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}
	var archives []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		if _, err := time.Parse(timeLayout, stamp); err != nil {
			continue
		}
		archives = append(archives, name)
	}
	if len(archives) <= keep {
		return nil, nil
	}
	slices.Sort(archives)

	var removed []string
	for _, name := range archives[:len(archives)-keep] {
		path := filepath.Join(directory, name)
		if err := os.Remove(path); err != nil {
			return removed, err
		}
		removed = append(removed, path)
	}
	return removed, nil
}
