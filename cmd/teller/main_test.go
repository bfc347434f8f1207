// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/dispatch"
	"github.com/bureau-foundation/teller/lib/ledger/memstore"
	"github.com/bureau-foundation/teller/lib/passhash"
	"github.com/bureau-foundation/teller/lib/protocol"
	"github.com/bureau-foundation/teller/lib/service"
	"github.com/bureau-foundation/teller/lib/testutil"
)

var testEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

const (
	adminPassword    = "Adm1nPassword"
	customerPassword = "Cust0merPass"
)

type harness struct {
	t      *testing.T
	socket string
	store  *memstore.Store
	files  string
}

func startHarness(t *testing.T) *harness {
	t.Helper()
	store := memstore.New(clock.Fake(testEpoch))
	hasher, err := passhash.New(passhash.InsecureTestParams)
	if err != nil {
		t.Fatalf("passhash.New: %v", err)
	}
	for _, user := range []struct {
		account  bank.AccountNumber
		email    string
		password string
		admin    bool
		balance  int64
	}{
		{"9000", "ada@example.com", adminPassword, true, 0},
		{"1001", "carl@example.com", customerPassword, false, 50000},
		{"1002", "dina@example.com", customerPassword, false, 0},
	} {
		hash, err := hasher.Hash(user.password)
		if err != nil {
			t.Fatalf("Hash: %v", err)
		}
		if _, err := store.CreateUser(context.Background(), bank.User{
			AccountNumber: user.account,
			FirstName:     "Test",
			LastName:      "User",
			Email:         user.email,
			PasswordHash:  hash,
			Admin:         user.admin,
			Balance:       user.balance,
		}); err != nil {
			t.Fatalf("CreateUser %s: %v", user.account, err)
		}
	}
	dispatcher, err := dispatch.New(dispatch.Config{Store: store, Hasher: hasher, Logger: testutil.Logger(t)})
	if err != nil {
		t.Fatalf("dispatch.New: %v", err)
	}
	socket := testutil.SocketPath(t, "teller")
	server, err := service.NewServer(service.Config{
		Network:    "unix",
		Address:    socket,
		Dispatcher: dispatcher,
		Logger:     testutil.Logger(t),
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")
	t.Cleanup(func() {
		cancel()
		testutil.RequireReceive(t, done, 5*time.Second, "Serve did not return")
	})

	h := &harness{t: t, socket: socket, store: store, files: t.TempDir()}
	return h
}

func (h *harness) passwordFile(name, password string) string {
	h.t.Helper()
	path := filepath.Join(h.files, name)
	if err := os.WriteFile(path, []byte(password+"\n"), 0o600); err != nil {
		h.t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// run executes the CLI as account and returns stdout.
func (h *harness) run(account, password string, args ...string) (string, error) {
	h.t.Helper()
	var stdout bytes.Buffer
	full := append([]string{}, args[0],
		"--server", "unix:"+h.socket,
		"--account", account,
		"--password-file", h.passwordFile("password-"+account, password),
	)
	full = append(full, args[1:]...)
	err := newApp(&stdout).root().Execute(context.Background(), full)
	return stdout.String(), err
}

func (h *harness) mustRun(account, password string, args ...string) string {
	h.t.Helper()
	out, err := h.run(account, password, args...)
	if err != nil {
		h.t.Fatalf("teller %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func requireStatus(t *testing.T, err error, status protocol.Status) {
	t.Helper()
	var responseErr *service.ResponseError
	if !errors.As(err, &responseErr) {
		t.Fatalf("error = %v, want a %s response", err, status)
	}
	if responseErr.Status != status {
		t.Fatalf("status = %s (%s), want %s", responseErr.Status, responseErr.Message, status)
	}
}

func TestBalanceAndLogin(t *testing.T) {
	h := startHarness(t)
	if out := h.mustRun("1001", customerPassword, "balance"); strings.TrimSpace(out) != "500.00" {
		t.Errorf("balance = %q, want 500.00", out)
	}
	out := h.mustRun("1001", customerPassword, "login", "--json")
	var profile bank.Profile
	if err := json.Unmarshal([]byte(out), &profile); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if profile.AccountNumber != "1001" || profile.Role != bank.RoleUser {
		t.Errorf("profile = %+v", profile)
	}

	_, err := h.run("1001", "WrongPassw0rd", "balance")
	requireStatus(t, err, protocol.StatusFailure)

	_, err = h.run("1001", customerPassword, "balance", "1002")
	requireStatus(t, err, protocol.StatusFailure)
}

func TestTransferByEmailAndHistory(t *testing.T) {
	h := startHarness(t)
	out := h.mustRun("1001", customerPassword, "transfer", "dina@example.com", "12.50")
	if !strings.Contains(out, "487.50") {
		t.Errorf("transfer output missing new balance:\n%s", out)
	}
	if out := h.mustRun("1002", customerPassword, "balance"); strings.TrimSpace(out) != "12.50" {
		t.Errorf("destination balance = %q, want 12.50", out)
	}

	out = h.mustRun("1001", customerPassword, "history", "--json", "--limit", "1")
	var history []bank.Transaction
	if err := json.Unmarshal([]byte(out), &history); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(history) != 1 || history[0].Amount != -1250 || history[0].Counterparty != "1002" {
		t.Errorf("history = %+v", history)
	}

	_, err := h.run("1002", customerPassword, "transfer", "1001", "100")
	requireStatus(t, err, protocol.StatusFailure)
}

func TestDepositAndWithdraw(t *testing.T) {
	h := startHarness(t)
	h.mustRun("9000", adminPassword, "deposit", "--to", "1002", "20")
	h.mustRun("9000", adminPassword, "withdraw", "--to", "1002", "5.25")
	if out := h.mustRun("1002", customerPassword, "balance"); strings.TrimSpace(out) != "14.75" {
		t.Errorf("balance = %q, want 14.75", out)
	}
	if _, err := h.run("9000", adminPassword, "deposit", "-3"); err == nil {
		t.Error("negative deposit accepted")
	}
}

func TestAdministration(t *testing.T) {
	h := startHarness(t)
	newPassword := h.passwordFile("new-user", "Fresh1Password")
	out := h.mustRun("9000", adminPassword, "create-user", "2001",
		"--first-name", "Merit", "--last-name", "Ptah", "--email", "merit@example.com",
		"--balance", "10", "--new-password-file", newPassword)
	if !strings.Contains(out, "merit@example.com") || !strings.Contains(out, "10.00") {
		t.Errorf("create-user output:\n%s", out)
	}
	if got := strings.TrimSpace(h.mustRun("9000", adminPassword, "account-number", "merit@example.com")); got != "2001" {
		t.Errorf("account-number = %q, want 2001", got)
	}

	h.mustRun("9000", adminPassword, "update-user", "2001", "--role", "admin", "--last-name", "Sekhmet")
	out = h.mustRun("9000", adminPassword, "users", "--json")
	var users []bank.Profile
	if err := json.Unmarshal([]byte(out), &users); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(users) != 4 {
		t.Fatalf("users = %d, want 4", len(users))
	}
	for _, user := range users {
		if user.AccountNumber == "2001" && (user.Role != bank.RoleAdmin || user.LastName != "Sekhmet") {
			t.Errorf("updated user = %+v", user)
		}
	}

	_, err := h.run("9000", adminPassword, "update-user", "2001")
	requireStatus(t, err, protocol.StatusFailure)

	h.mustRun("9000", adminPassword, "delete-user", "2001")
	_, err = h.run("1001", customerPassword, "users")
	requireStatus(t, err, protocol.StatusFailure)
}

func TestUpdateOwnCredentials(t *testing.T) {
	h := startHarness(t)
	h.mustRun("1001", customerPassword, "update-email", "carl.new@example.com")
	newPassword := h.passwordFile("rotated", "Rotated9Password")
	h.mustRun("1001", customerPassword, "update-password", "--new-password-file", newPassword)

	if _, err := h.run("1001", customerPassword, "balance"); err == nil {
		t.Error("old password still accepted")
	}
	out := h.mustRun("1001", "Rotated9Password", "login")
	if !strings.Contains(out, "carl.new@example.com") {
		t.Errorf("login output missing new email:\n%s", out)
	}
}

func TestParseServer(t *testing.T) {
	for _, test := range []struct {
		server, network, address string
	}{
		{"127.0.0.1:7447", "tcp", "127.0.0.1:7447"},
		{"unix:teller.sock", "unix", "teller.sock"},
		{"/run/teller/teller.sock", "unix", "/run/teller/teller.sock"},
	} {
		network, address := parseServer(test.server)
		if network != test.network || address != test.address {
			t.Errorf("parseServer(%q) = %s %s, want %s %s", test.server, network, address, test.network, test.address)
		}
	}
}

func TestTransferRequest(t *testing.T) {
	byEmail := transferRequest("1001", "", "dina@example.com", 5)
	if byEmail.ToEmail != "dina@example.com" || byEmail.ToAccountNumber != "" || byEmail.FromAccountNumber != "1001" {
		t.Errorf("by email = %+v", byEmail)
	}
	byNumber := transferRequest("9000", "1001", "1002", 5)
	if byNumber.ToAccountNumber != "1002" || byNumber.FromAccountNumber != "1001" {
		t.Errorf("by number = %+v", byNumber)
	}
}

func TestUpdateRequest(t *testing.T) {
	request, err := updateRequest("1001", "", "", "", "")
	if err != nil {
		t.Fatalf("updateRequest: %v", err)
	}
	if request.FirstName != nil || request.LastName != nil || request.Email != nil || request.Admin != nil {
		t.Errorf("empty update carries fields: %+v", request)
	}
	request, err = updateRequest("1001", "Ada", "", "", "user")
	if err != nil {
		t.Fatalf("updateRequest: %v", err)
	}
	if request.FirstName == nil || *request.FirstName != "Ada" || request.Admin == nil || *request.Admin {
		t.Errorf("update = %+v", request)
	}
	if _, err := updateRequest("1001", "", "", "", "root"); err == nil {
		t.Error("unknown role accepted")
	}
}

func TestMissingAccount(t *testing.T) {
	var stdout bytes.Buffer
	t.Setenv(accountEnv, "")
	err := newApp(&stdout).root().Execute(context.Background(), []string{"balance", "--server", "unix:/nonexistent"})
	if err == nil || !strings.Contains(err.Error(), "--account") {
		t.Fatalf("err = %v, want a missing --account error", err)
	}
}
