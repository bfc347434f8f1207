// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/teller/lib/backup"
)

// EnvVar names the environment variable [Load] reads.
const EnvVar = "TELLER_CONFIG"

// Environment is the deployment type.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the server configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	Listen    ListenConfig    `yaml:"listen"`
	Store     StoreConfig     `yaml:"store"`
	Limits    LimitsConfig    `yaml:"limits"`
	Log       LogConfig       `yaml:"log"`
	Passwords PasswordsConfig `yaml:"passwords"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Seed      SeedConfig      `yaml:"seed"`
	Backup    BackupConfig    `yaml:"backup"`

	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides holds the per-environment sections. Zero fields inside a
// present section leave the base value alone.
type Overrides struct {
	Listen    *ListenConfig    `yaml:"listen,omitempty"`
	Store     *StoreConfig     `yaml:"store,omitempty"`
	Limits    *LimitsConfig    `yaml:"limits,omitempty"`
	Log       *LogConfig       `yaml:"log,omitempty"`
	Passwords *PasswordsConfig `yaml:"passwords,omitempty"`
	Seed      *SeedConfig      `yaml:"seed,omitempty"`
	Backup    *BackupConfig    `yaml:"backup,omitempty"`
}

// ListenConfig is where the server accepts connections.
type ListenConfig struct {
	// Network is "tcp" or "unix".
	Network string `yaml:"network"`

	// Address is host:port for tcp or a socket path for unix.
	Address string `yaml:"address"`
}

// StoreConfig selects the ledger backend.
type StoreConfig struct {
	// Driver is "memory" or "sqlite".
	Driver string `yaml:"driver"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// PoolSize is the number of SQLite connections.
	PoolSize int `yaml:"pool_size"`
}

// LimitsConfig bounds connections.
type LimitsConfig struct {
	MaxFrameBytes int           `yaml:"max_frame_bytes"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
}

// LogConfig configures the server's slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is json, text, or auto (text on a terminal, else json).
	Format string `yaml:"format"`
}

// PasswordsConfig holds the argon2id cost parameters for new hashes.
type PasswordsConfig struct {
	MemoryKiB   uint32 `yaml:"memory_kib"`
	Iterations  uint32 `yaml:"iterations"`
	Parallelism uint8  `yaml:"parallelism"`
}

// DashboardConfig shapes the UserInit response.
type DashboardConfig struct {
	History int `yaml:"history"`
}

// SeedConfig names a JSONC file applied when the store is empty.
type SeedConfig struct {
	File string `yaml:"file"`
}

// BackupConfig holds defaults for the backup and restore commands.
type BackupConfig struct {
	Directory string `yaml:"directory"`

	// Compression is zstd, lz4 or none.
	Compression string `yaml:"compression"`

	// Recipients is a file of age recipients; backups are encrypted
	// to them when set.
	Recipients string `yaml:"recipients"`

	// Identity is an age identity file used by restore.
	Identity string `yaml:"identity"`

	// Schedule is a five-field UTC cron expression. When set, serve
	// writes an archive into Directory each time it fires.
	Schedule string `yaml:"schedule"`

	// Keep bounds how many scheduled archives stay in Directory. Zero
	// keeps all of them.
	Keep int `yaml:"keep"`
}

// Default returns the base values a file is merged into.
func Default() *Config {
	return &Config{
		Environment: Development,
		Listen: ListenConfig{
			Network: "tcp",
			Address: "127.0.0.1:7447",
		},
		Store: StoreConfig{
			Driver:   "memory",
			PoolSize: 4,
		},
		Limits: LimitsConfig{
			MaxFrameBytes: 1 << 20,
			IdleTimeout:   5 * time.Minute,
			WriteTimeout:  10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Passwords: PasswordsConfig{
			MemoryKiB:   64 * 1024,
			Iterations:  3,
			Parallelism: 2,
		},
		Dashboard: DashboardConfig{History: 10},
		Backup: BackupConfig{
			Directory:   ".",
			Compression: "zstd",
		},
	}
}

// Load loads the file named by TELLER_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your teller.yaml or use --config", EnvVar)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path, applies the section for the
// configured environment and expands variables. It does not validate.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into a copy of [Default] and resolves overrides
// and variables.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production logs as JSON unless the file says otherwise.
		if overrides == nil {
			overrides = &Overrides{Log: &LogConfig{Format: "json"}}
		}
	}
	if overrides == nil {
		return
	}

	if o := overrides.Listen; o != nil {
		override(&c.Listen.Network, o.Network)
		override(&c.Listen.Address, o.Address)
	}
	if o := overrides.Store; o != nil {
		override(&c.Store.Driver, o.Driver)
		override(&c.Store.Path, o.Path)
		override(&c.Store.PoolSize, o.PoolSize)
	}
	if o := overrides.Limits; o != nil {
		override(&c.Limits.MaxFrameBytes, o.MaxFrameBytes)
		override(&c.Limits.IdleTimeout, o.IdleTimeout)
		override(&c.Limits.WriteTimeout, o.WriteTimeout)
	}
	if o := overrides.Log; o != nil {
		override(&c.Log.Level, o.Level)
		override(&c.Log.Format, o.Format)
	}
	if o := overrides.Passwords; o != nil {
		override(&c.Passwords.MemoryKiB, o.MemoryKiB)
		override(&c.Passwords.Iterations, o.Iterations)
		override(&c.Passwords.Parallelism, o.Parallelism)
	}
	if o := overrides.Seed; o != nil {
		override(&c.Seed.File, o.File)
	}
	if o := overrides.Backup; o != nil {
		override(&c.Backup.Directory, o.Directory)
		override(&c.Backup.Compression, o.Compression)
		override(&c.Backup.Recipients, o.Recipients)
		override(&c.Backup.Identity, o.Identity)
		override(&c.Backup.Schedule, o.Schedule)
		override(&c.Backup.Keep, o.Keep)
	}
}

// override replaces *target with value unless value is zero.
func override[T comparable](target *T, value T) {
	var zero T
	if value != zero {
		*target = value
	}
}

func (c *Config) expandVariables() {
	for _, field := range []*string{
		&c.Listen.Address,
		&c.Store.Path,
		&c.Seed.File,
		&c.Backup.Directory,
		&c.Backup.Recipients,
		&c.Backup.Identity,
	} {
		*field = expandVars(*field)
	}
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(slices.Contains([]Environment{Development, Staging, Production}, c.Environment),
		"invalid environment: %q", c.Environment)

	check(c.Listen.Network == "tcp" || c.Listen.Network == "unix",
		"listen.network must be tcp or unix, got %q", c.Listen.Network)
	check(c.Listen.Address != "", "listen.address is required")

	switch c.Store.Driver {
	case "memory":
		check(c.Environment != Production, "store.driver memory is not allowed in production")
	case "sqlite":
		check(c.Store.Path != "", "store.path is required for the sqlite driver")
		check(c.Store.PoolSize >= 1, "store.pool_size must be at least 1, got %d", c.Store.PoolSize)
	default:
		errs = append(errs, fmt.Errorf("store.driver must be memory or sqlite, got %q", c.Store.Driver))
	}

	check(c.Limits.MaxFrameBytes >= 1<<10 && c.Limits.MaxFrameBytes <= 16<<20,
		"limits.max_frame_bytes must be between 1KiB and 16MiB, got %d", c.Limits.MaxFrameBytes)
	check(c.Limits.IdleTimeout > 0, "limits.idle_timeout must be positive")
	check(c.Limits.WriteTimeout > 0, "limits.write_timeout must be positive")

	var level slog.Level
	check(level.UnmarshalText([]byte(c.Log.Level)) == nil, "log.level %q is not a slog level", c.Log.Level)
	check(slices.Contains([]string{"json", "text", "auto"}, c.Log.Format),
		"log.format must be json, text or auto, got %q", c.Log.Format)

	check(c.Passwords.MemoryKiB >= 8*1024, "passwords.memory_kib must be at least 8192")
	check(c.Passwords.Iterations >= 1, "passwords.iterations must be at least 1")
	check(c.Passwords.Parallelism >= 1, "passwords.parallelism must be at least 1")

	check(c.Dashboard.History >= 0, "dashboard.history must not be negative")

	check(slices.Contains([]string{"zstd", "lz4", "none"}, c.Backup.Compression),
		"backup.compression must be zstd, lz4 or none, got %q", c.Backup.Compression)
	if c.Backup.Schedule != "" {
		_, err := backup.ParseSchedule(c.Backup.Schedule)
		check(err == nil, "backup.schedule: %v", err)
	}
	check(c.Backup.Keep >= 0, "backup.keep must not be negative")

	return errors.Join(errs...)
}

// LogLevel returns the parsed log level, or info when invalid.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
