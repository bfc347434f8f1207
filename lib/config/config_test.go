// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "teller.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Environment != Development || cfg.Store.Driver != "memory" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadRequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvVar, "")
	_, err := Load()
	if err == nil || !strings.HasPrefix(err.Error(), "TELLER_CONFIG environment variable not set") {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadFromEnvironmentVariable(t *testing.T) {
	path := writeConfig(t, `
environment: staging
listen:
  network: unix
  address: /run/teller/teller.sock
`)
	t.Setenv(EnvVar, path)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != Staging || cfg.Listen.Network != "unix" || cfg.Listen.Address != "/run/teller/teller.sock" {
		t.Errorf("loaded %+v", cfg.Listen)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
environment: development
store:
  driver: sqlite
  path: /var/lib/teller/ledger.db
  pool_size: 8
limits:
  max_frame_bytes: 65536
  idle_timeout: 90s
  write_timeout: 2s
log:
  level: debug
  format: text
dashboard:
  history: 25
backup:
  compression: lz4
  schedule: "30 2 * * *"
  keep: 7
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.PoolSize != 8 || cfg.Store.Path != "/var/lib/teller/ledger.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Limits.IdleTimeout != 90*time.Second || cfg.Limits.WriteTimeout != 2*time.Second || cfg.Limits.MaxFrameBytes != 65536 {
		t.Errorf("limits = %+v", cfg.Limits)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.LogLevel())
	}
	if cfg.Dashboard.History != 25 || cfg.Backup.Compression != "lz4" ||
		cfg.Backup.Schedule != "30 2 * * *" || cfg.Backup.Keep != 7 {
		t.Errorf("dashboard/backup = %+v %+v", cfg.Dashboard, cfg.Backup)
	}
	// Unset keys keep their defaults.
	if cfg.Listen.Address != Default().Listen.Address {
		t.Errorf("listen.address = %q", cfg.Listen.Address)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: production
store:
  driver: memory
log:
  level: debug
production:
  store:
    driver: sqlite
    path: /srv/teller/ledger.db
  log:
    level: warn
staging:
  store:
    path: /never/applied.db
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "/srv/teller/ledger.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "auto" {
		t.Errorf("explicit production section still changed log.format to %q", cfg.Log.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestProductionDefaultsToJSONLogs(t *testing.T) {
	path := writeConfig(t, `
environment: production
store:
  driver: sqlite
  path: /srv/teller/ledger.db
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log.format = %q, want json", cfg.Log.Format)
	}
}

func TestVariableExpansion(t *testing.T) {
	t.Setenv("TELLER_TEST_STATE", "/state")
	t.Setenv("TELLER_TEST_UNSET", "")
	path := writeConfig(t, `
store:
  driver: sqlite
  path: ${TELLER_TEST_STATE}/ledger.db
backup:
  directory: ${TELLER_TEST_UNSET:-/backups}
log:
  level: ${TELLER_TEST_STATE}
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Store.Path != "/state/ledger.db" {
		t.Errorf("store.path = %q", cfg.Store.Path)
	}
	if cfg.Backup.Directory != "/backups" {
		t.Errorf("backup.directory = %q", cfg.Backup.Directory)
	}
	// Only path-like fields are expanded.
	if cfg.Log.Level != "${TELLER_TEST_STATE}" {
		t.Errorf("log.level was expanded to %q", cfg.Log.Level)
	}
}

func TestEnvironmentVariablesDoNotOverride(t *testing.T) {
	t.Setenv("TELLER_LISTEN_ADDRESS", "0.0.0.0:1")
	path := writeConfig(t, `
listen:
  address: 127.0.0.1:9000
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Listen.Address != "127.0.0.1:9000" {
		t.Errorf("listen.address = %q", cfg.Listen.Address)
	}
}

func TestUnknownKeysRejected(t *testing.T) {
	path := writeConfig(t, `
store:
  drivr: sqlite
`)
	if _, err := LoadFile(path); err == nil {
		t.Fatal("LoadFile accepted a misspelled key")
	}
}

func TestEmptyFileYieldsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if cfg.Listen != Default().Listen {
		t.Errorf("listen = %+v", cfg.Listen)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Environment = "qa"
	cfg.Listen.Network = "udp"
	cfg.Store.Driver = "sqlite"
	cfg.Limits.MaxFrameBytes = 10
	cfg.Log.Level = "loud"
	cfg.Backup.Compression = "gzip"
	cfg.Backup.Schedule = "every night"
	cfg.Backup.Keep = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate accepted an invalid config")
	}
	for _, want := range []string{
		"invalid environment",
		"listen.network",
		"store.path is required",
		"limits.max_frame_bytes",
		"log.level",
		"backup.compression",
		"backup.schedule",
		"backup.keep",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate error lacks %q:\n%v", want, err)
		}
	}
}

func TestProductionRejectsMemoryStore(t *testing.T) {
	cfg := Default()
	cfg.Environment = Production
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "not allowed in production") {
		t.Errorf("Validate() = %v", err)
	}
}
