// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/teller/lib/backup"
	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/config"
	"github.com/bureau-foundation/teller/lib/ledger"
	"github.com/bureau-foundation/teller/lib/ledger/memstore"
	"github.com/bureau-foundation/teller/lib/passhash"
	"github.com/bureau-foundation/teller/lib/seed"
	"github.com/bureau-foundation/teller/lib/service"
	"github.com/bureau-foundation/teller/lib/testutil"
)

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

const seedFixture = `{
	// one administrator and one customer
	"users": [
		{"account_number": "9000", "first_name": "Ada", "last_name": "Admin",
		 "email": "ada@example.com", "password": "Adm1nPassword", "role": "admin"},
		{"account_number": "1001", "first_name": "Carl", "last_name": "Customer",
		 "email": "carl@example.com", "password": "Cust0merPass", "balance": 50000},
	],
}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Listen.Network = "unix"
	cfg.Listen.Address = testutil.SocketPath(t, "tellerd")
	cfg.Passwords.MemoryKiB = 8 * 1024
	cfg.Passwords.Iterations = 1
	cfg.Passwords.Parallelism = 1
	cfg.Seed.File = writeFile(t, "seed.jsonc", seedFixture)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return cfg
}

func TestServeSeedsAndAnswers(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	servers := make(chan *service.Server, 1)
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, cfg, clock.Fake(testEpoch), testutil.Logger(t), func(s *service.Server) { servers <- s })
	}()
	server := testutil.RequireReceive(t, servers, 5*time.Second, "server not built")
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")

	client, err := service.Dial(ctx, service.ClientConfig{Network: "unix", Address: cfg.Listen.Address})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	profile, err := client.Login(ctx, "9000", "Adm1nPassword")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if profile.Role != bank.RoleAdmin {
		t.Errorf("role = %q, want admin", profile.Role)
	}
	users, err := client.GetDatabase(ctx)
	if err != nil {
		t.Fatalf("GetDatabase: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("GetDatabase returned %d users, want 2", len(users))
	}
	balance, err := client.GetBalance(ctx, "1001")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance != 50000 {
		t.Errorf("balance = %d, want 50000", balance)
	}

	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "serve did not return"); err != nil {
		t.Errorf("serve returned %v", err)
	}
}

func TestServeRejectsBadSeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Seed.File = writeFile(t, "seed.jsonc", `{"users": [{"account_number": "12"}]}`)
	err := serve(context.Background(), cfg, clock.Fake(testEpoch), testutil.Logger(t), func(*service.Server) {
		t.Error("server built despite an invalid seed")
	})
	if err == nil {
		t.Fatal("serve accepted an invalid seed file")
	}
}

func newSeededStore(t *testing.T) (*memstore.Store, *passhash.Hasher) {
	t.Helper()
	store := memstore.New(clock.Fake(testEpoch))
	hasher, err := passhash.New(passhash.InsecureTestParams)
	if err != nil {
		t.Fatalf("passhash.New: %v", err)
	}
	file, err := seed.Parse([]byte(seedFixture))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := seed.Apply(context.Background(), store, hasher, file); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return store, hasher
}

func TestApplySeedFileSkipsPopulatedStore(t *testing.T) {
	store, hasher := newSeededStore(t)
	path := writeFile(t, "seed.jsonc", seedFixture)
	if err := applySeedFile(context.Background(), path, store, hasher, testutil.Logger(t)); err != nil {
		t.Fatalf("applySeedFile on a populated store: %v", err)
	}
	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("store has %d users, want 2", len(users))
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	source, _ := newSeededStore(t)
	if _, err := source.Transfer(ctx, "1001", "9000", 1250); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	snapshot, err := source.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	directory := t.TempDir()
	identityPath := filepath.Join(directory, "identity")
	publicKey, err := writeIdentity(identityPath)
	if err != nil {
		t.Fatalf("writeIdentity: %v", err)
	}
	info, err := os.Stat(identityPath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("identity mode = %v, want 0600", info.Mode().Perm())
	}

	archivePath := filepath.Join(directory, "backups", backup.FileName(snapshot.TakenAt))
	written, err := backup.WriteFile(archivePath, snapshot, backup.WriteOptions{
		Compression: backup.CompressionZstd,
		Recipients:  []string{publicKey},
	})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !written.Encrypted {
		t.Error("archive not marked encrypted")
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(archivePath), ".teller-backup-*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}

	if _, _, err := readArchive(archivePath, ""); !errors.Is(err, backup.ErrEncrypted) {
		t.Fatalf("reading without identity: err = %v, want ErrEncrypted", err)
	}
	restored, summary, err := readArchive(archivePath, identityPath)
	if err != nil {
		t.Fatalf("readArchive: %v", err)
	}
	if summary.Digest != written.Digest {
		t.Errorf("digest = %s, want %s", summary.Digest, written.Digest)
	}
	if err := ledger.VerifySnapshot(restored); err != nil {
		t.Fatalf("VerifySnapshot: %v", err)
	}

	target := memstore.New(clock.Fake(testEpoch))
	if err := target.Restore(ctx, restored); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	user, err := target.FindUser(ctx, "1001")
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if user.Balance != 50000-1250 {
		t.Errorf("restored balance = %d, want %d", user.Balance, 50000-1250)
	}
}

func TestWriteIdentityRefusesOverwrite(t *testing.T) {
	path := writeFile(t, "identity", "existing")
	if _, err := writeIdentity(path); err == nil {
		t.Fatal("writeIdentity overwrote an existing file")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "existing" {
		t.Errorf("existing identity changed to %q", data)
	}
}

func TestLoadSeed(t *testing.T) {
	options := seed.DefaultGenerateOptions
	if _, err := loadSeed("", false, options); err == nil {
		t.Error("no source accepted")
	}
	if _, err := loadSeed("seed.jsonc", true, options); err == nil {
		t.Error("--file with --generate accepted")
	}
	if _, err := loadSeed("", true, seed.GenerateOptions{}); err == nil {
		t.Error("empty generation accepted")
	}
	if _, err := loadSeed("", true, seed.GenerateOptions{Users: -1, Admins: 1}); err == nil {
		t.Error("negative count accepted")
	}
	file, err := loadSeed("", true, options)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := len(file.Users); got != options.Admins+options.Users {
		t.Errorf("generated %d users, want %d", got, options.Admins+options.Users)
	}
}

func TestPrintCredentials(t *testing.T) {
	file := &seed.File{Users: []seed.User{{
		AccountNumber: "123456",
		FirstName:     "Nefert",
		LastName:      "Ahmose",
		Email:         "nefert@example.com",
		Password:      "Pa55wordXyz",
		Balance:       123456,
	}}}
	var out bytes.Buffer
	if err := printCredentials(&out, file, false); err != nil {
		t.Fatalf("printCredentials: %v", err)
	}
	for _, want := range []string{"123456", "user", "Nefert Ahmose", "Pa55wordXyz", "1234.56"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table missing %q:\n%s", want, out.String())
		}
	}
	out.Reset()
	if err := printCredentials(&out, file, true); err != nil {
		t.Fatalf("printCredentials json: %v", err)
	}
	if !strings.Contains(out.String(), `"password": "Pa55wordXyz"`) {
		t.Errorf("json output missing password:\n%s", out.String())
	}
}

func TestBackupRecipients(t *testing.T) {
	cfg := config.Default()
	if keys, err := backupRecipients(cfg, nil, false); err != nil || len(keys) != 0 {
		t.Errorf("no recipients: keys = %v, err = %v", keys, err)
	}
	if _, err := backupRecipients(cfg, []string{"not-a-key"}, false); err == nil {
		t.Error("invalid recipient accepted")
	}
	if _, err := backupRecipients(cfg, []string{"age1xyz"}, true); err == nil {
		t.Error("--no-encrypt with --recipient accepted")
	}
	cfg.Backup.Recipients = filepath.Join(t.TempDir(), "missing")
	if _, err := backupRecipients(cfg, nil, true); err != nil {
		t.Errorf("--no-encrypt still read the recipients file: %v", err)
	}
	if _, err := backupRecipients(cfg, nil, false); err == nil {
		t.Error("missing recipients file accepted")
	}
}

func TestRequirePersistent(t *testing.T) {
	cfg := config.Default()
	if err := requirePersistent(cfg); err == nil {
		t.Error("memory store accepted")
	}
	cfg.Store.Driver = "sqlite"
	if err := requirePersistent(cfg); err != nil {
		t.Errorf("sqlite store rejected: %v", err)
	}
}

func TestNewScheduler(t *testing.T) {
	cfg := config.Default()
	cfg.Backup.Schedule = "15 3 * * *"
	cfg.Backup.Keep = 3
	cfg.Backup.Directory = t.TempDir()
	scheduler, err := newScheduler(cfg, memstore.New(clock.Fake(testEpoch)), clock.Fake(testEpoch), testutil.Logger(t))
	if err != nil {
		t.Fatalf("newScheduler: %v", err)
	}
	if scheduler.Keep != 3 || scheduler.Options.Compression != backup.CompressionZstd || len(scheduler.Options.Recipients) != 0 {
		t.Errorf("scheduler = %+v", scheduler)
	}
	path, _, err := scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if filepath.Dir(path) != cfg.Backup.Directory {
		t.Errorf("archive written to %s", path)
	}
}

func TestRootRejectsUnknownCommand(t *testing.T) {
	command := root()
	command.HelpOutput = &bytes.Buffer{}
	if err := command.Execute(context.Background(), []string{"serv"}); err == nil {
		t.Fatal("unknown command accepted")
	}
}
