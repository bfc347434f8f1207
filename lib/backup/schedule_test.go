// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/ledger/ledgertest"
	"github.com/bureau-foundation/teller/lib/ledger/memstore"
	"github.com/bureau-foundation/teller/lib/testutil"
)

func mustSchedule(t *testing.T, expression string) Schedule {
	t.Helper()
	schedule, err := ParseSchedule(expression)
	if err != nil {
		t.Fatalf("ParseSchedule(%q): %v", expression, err)
	}
	return schedule
}

func TestParseScheduleRejects(t *testing.T) {
	for _, expression := range []string{
		"",
		"* * * *",
		"* * * * * *",
		"60 * * * *",
		"* 24 * * *",
		"* * 0 * *",
		"* * * 13 *",
		"* * * * 7",
		"*/0 * * * *",
		"5-1 * * * *",
		"a * * * *",
		"1,,2 * * * *",
	} {
		if _, err := ParseSchedule(expression); err == nil {
			t.Errorf("ParseSchedule(%q) succeeded", expression)
		}
	}
}

func TestScheduleNext(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	from := time.Date(2026, 3, 4, 10, 17, 42, 0, time.UTC)
	for _, test := range []struct {
		expression string
		want       time.Time
	}{
		{"* * * * *", time.Date(2026, 3, 4, 10, 18, 0, 0, time.UTC)},
		{"*/15 * * * *", time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)},
		{"30 2 * * *", time.Date(2026, 3, 5, 2, 30, 0, 0, time.UTC)},
		{"0 9 * * 1-5", time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)},
		{"0 0 * * 0", time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)},
		{"0 0 1 * *", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"0 0 1 1 *", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"0 12 29 2 *", time.Date(2028, 2, 29, 12, 0, 0, 0, time.UTC)},
		{"20/20 10 * * *", time.Date(2026, 3, 4, 10, 20, 0, 0, time.UTC)},
		{"17 10 4 3 *", time.Date(2027, 3, 4, 10, 17, 0, 0, time.UTC)},
	} {
		got, err := mustSchedule(t, test.expression).Next(from)
		if err != nil {
			t.Errorf("%q: %v", test.expression, err)
			continue
		}
		if !got.Equal(test.want) {
			t.Errorf("%q.Next = %s, want %s", test.expression, got, test.want)
		}
	}
}

func TestScheduleNextIsStrictlyAfter(t *testing.T) {
	schedule := mustSchedule(t, "0 3 * * *")
	at := time.Date(2026, 3, 4, 3, 0, 0, 0, time.UTC)
	next, err := schedule.Next(at)
	if err != nil {
		t.Fatal(err)
	}
	if want := at.AddDate(0, 0, 1); !next.Equal(want) {
		t.Errorf("Next = %s, want %s", next, want)
	}
}

func TestScheduleThatNeverFires(t *testing.T) {
	if _, err := mustSchedule(t, "0 0 31 2 *").Next(epoch); err == nil {
		t.Error("February 31 fired")
	}
	if _, err := (Schedule{}).Next(epoch); err == nil {
		t.Error("zero schedule fired")
	}
}

func TestWriteFileAndPrune(t *testing.T) {
	directory := t.TempDir()
	snapshot := populatedSnapshot(t)
	var names []string
	for hour := range 4 {
		taken := epoch.Add(time.Duration(hour) * time.Hour)
		path := filepath.Join(directory, FileName(taken))
		if _, err := WriteFile(path, snapshot, WriteOptions{Compression: CompressionLZ4}); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		names = append(names, filepath.Base(path))
	}
	if err := os.WriteFile(filepath.Join(directory, "teller-notes.bak"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	removed, err := Prune(directory, 2)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(removed) != 2 || filepath.Base(removed[0]) != names[0] || filepath.Base(removed[1]) != names[1] {
		t.Errorf("removed %v, want the two oldest of %v", removed, names)
	}
	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatal(err)
	}
	var left []string
	for _, entry := range entries {
		left = append(left, entry.Name())
	}
	want := []string{names[2], names[3], "teller-notes.bak"}
	if len(left) != len(want) {
		t.Fatalf("directory holds %v, want %v", left, want)
	}
	for index := range want {
		if left[index] != want[index] {
			t.Errorf("directory holds %v, want %v", left, want)
			break
		}
	}

	if removed, err := Prune(directory, 0); err != nil || removed != nil {
		t.Errorf("Prune(0) = %v, %v", removed, err)
	}
}

func TestSchedulerRunOnce(t *testing.T) {
	ctx := context.Background()
	clk := clock.Fake(epoch)
	store := memstore.New(clk)
	if _, err := store.CreateUser(ctx, ledgertest.NewUser(bank.AccountNumber("1000"), 500)); err != nil {
		t.Fatal(err)
	}
	directory := t.TempDir()
	scheduler := &Scheduler{
		Schedule:  mustSchedule(t, "0 * * * *"),
		Source:    store,
		Directory: directory,
		Options:   WriteOptions{Compression: CompressionZstd},
		Keep:      1,
		Clock:     clk,
		Logger:    testutil.Logger(t),
	}
	first, _, err := scheduler.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	clk.Advance(time.Hour)
	second, summary, err := scheduler.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if first == second {
		t.Fatalf("both runs wrote %s", first)
	}
	if summary.Users != 1 {
		t.Errorf("summary users = %d, want 1", summary.Users)
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Errorf("first archive survived pruning: %v", err)
	}
	file, err := os.Open(second)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if _, _, err := Read(file, ReadOptions{}); err != nil {
		t.Errorf("Read(%s): %v", second, err)
	}
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	scheduler := &Scheduler{
		Schedule:  mustSchedule(t, "0 0 1 1 *"),
		Source:    memstore.New(clock.Fake(epoch)),
		Directory: t.TempDir(),
	}
	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()
	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "Run did not return"); err != nil {
		t.Errorf("Run = %v", err)
	}
}
