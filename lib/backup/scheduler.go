// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/ledger"
)

// Scheduler writes an archive of Source into Directory each time
// Schedule fires, then prunes old archives down to Keep.
type Scheduler struct {
	Schedule  Schedule
	Source    ledger.Snapshotter
	Directory string
	Options   WriteOptions
	Keep      int
	Clock     clock.Clock
	Logger    *slog.Logger
}

// Run blocks until ctx is cancelled. A failed backup is logged and the
// next firing is still attempted.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.Source == nil {
		return errors.New("backup: Scheduler needs a Source")
	}
	for {
		now := s.now()
		next, err := s.Schedule.Next(now)
		if err != nil {
			return err
		}
		s.logger().Debug("next scheduled backup", "at", next)
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		if _, _, err := s.RunOnce(ctx); err != nil {
			s.logger().Error("scheduled backup failed", "error", err)
		}
	}
}

// RunOnce takes one backup and prunes. It returns the archive path.
func (s *Scheduler) RunOnce(ctx context.Context) (string, Summary, error) {
	snapshot, err := s.Source.Snapshot(ctx)
	if err != nil {
		return "", Summary{}, err
	}
	path := filepath.Join(s.Directory, FileName(snapshot.TakenAt))
	summary, err := WriteFile(path, snapshot, s.Options)
	if err != nil {
		return "", summary, err
	}
	s.logger().Info("backup written",
		"path", path,
		"users", summary.Users,
		"transactions", summary.Transactions,
		"compression", summary.Compression.String(),
		"encrypted", summary.Encrypted,
	)
	removed, err := Prune(s.Directory, s.Keep)
	for _, old := range removed {
		s.logger().Info("old backup removed", "path", old)
	}
	return path, summary, err
}

func (s *Scheduler) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
