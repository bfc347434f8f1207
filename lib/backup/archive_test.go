// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/clock"
	"github.com/bureau-foundation/teller/lib/ledger"
	"github.com/bureau-foundation/teller/lib/ledger/ledgertest"
	"github.com/bureau-foundation/teller/lib/ledger/memstore"
	"github.com/bureau-foundation/teller/lib/sealed"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// populatedSnapshot builds a store with users, transfers and one
// deleted account, and returns its snapshot.
func populatedSnapshot(t *testing.T) ledger.Snapshot {
	t.Helper()
	ctx := context.Background()
	store := memstore.New(clock.Fake(epoch))
	for index := range 40 {
		account := bank.AccountNumber(fmt.Sprintf("%d", 1000+index))
		if _, err := store.CreateUser(ctx, ledgertest.NewUser(account, 10_000)); err != nil {
			t.Fatalf("CreateUser(%s): %v", account, err)
		}
	}
	for index := range 39 {
		from := bank.AccountNumber(fmt.Sprintf("%d", 1000+index))
		to := bank.AccountNumber(fmt.Sprintf("%d", 1001+index))
		if _, err := store.Transfer(ctx, from, to, int64(index+1)); err != nil {
			t.Fatalf("Transfer: %v", err)
		}
	}
	if _, err := store.DeleteUser(ctx, "1039"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	snapshot, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return snapshot
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	snapshot := populatedSnapshot(t)

	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			t.Parallel()
			var archive bytes.Buffer
			written, err := Write(&archive, snapshot, WriteOptions{Compression: compression})
			if err != nil {
				t.Fatalf("Write: %v", err)
			}
			if written.Compression != compression {
				t.Errorf("compression = %s, want %s", written.Compression, compression)
			}
			if compression != CompressionNone && uint64(archive.Len()) >= written.Size {
				t.Errorf("archive is %d bytes, snapshot %d: expected compression", archive.Len(), written.Size)
			}

			restored, read, err := Read(&archive, ReadOptions{})
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if read.Digest != written.Digest {
				t.Errorf("digest = %s, want %s", read.Digest, written.Digest)
			}
			if read.Users != 39 || read.Retired != 1 || read.Transactions != len(snapshot.Transactions) {
				t.Errorf("summary = %+v", read)
			}
			if read.Encrypted {
				t.Error("plain archive reported as encrypted")
			}
			requireRestorable(t, restored, snapshot)
		})
	}
}

// requireRestorable loads restored into a fresh store and compares
// the result to want.
func requireRestorable(t *testing.T, restored, want ledger.Snapshot) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New(clock.Fake(epoch))
	if err := store.Restore(ctx, restored); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != len(want.Users) {
		t.Fatalf("restored %d users, want %d", len(users), len(want.Users))
	}
	for index, user := range users {
		if user.AccountNumber != want.Users[index].AccountNumber || user.Balance != want.Users[index].Balance {
			t.Errorf("user %d = %s/%d, want %s/%d", index,
				user.AccountNumber, user.Balance, want.Users[index].AccountNumber, want.Users[index].Balance)
		}
	}
	if len(restored.Transactions) != len(want.Transactions) {
		t.Fatalf("restored %d transactions, want %d", len(restored.Transactions), len(want.Transactions))
	}
	last := len(want.Transactions) - 1
	if restored.Transactions[last].Digest != want.Transactions[last].Digest {
		t.Error("chain head differs after round trip")
	}
}

func TestIncompressibleFallsBackToNone(t *testing.T) {
	t.Parallel()
	empty := ledger.Snapshot{Version: ledger.SnapshotVersion, TakenAt: epoch}

	var archive bytes.Buffer
	summary, err := Write(&archive, empty, WriteOptions{Compression: CompressionLZ4})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if summary.Compression != CompressionNone {
		t.Errorf("compression = %s, want none for a tiny snapshot", summary.Compression)
	}
	if _, _, err := Read(&archive, ReadOptions{}); err != nil {
		t.Fatalf("Read: %v", err)
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	t.Parallel()
	snapshot := populatedSnapshot(t)
	operator, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	t.Cleanup(func() { operator.Close() })
	escrow, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	t.Cleanup(func() { escrow.Close() })

	var archive bytes.Buffer
	_, err = Write(&archive, snapshot, WriteOptions{
		Compression: CompressionZstd,
		Recipients:  []string{operator.PublicKey, escrow.PublicKey},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !sealed.IsEncrypted(archive.Bytes()) {
		t.Fatal("archive does not start with an age header")
	}
	ciphertext := archive.Bytes()

	if _, _, err := Read(bytes.NewReader(ciphertext), ReadOptions{}); !errors.Is(err, ErrEncrypted) {
		t.Errorf("Read without identity: err = %v, want ErrEncrypted", err)
	}

	for name, keypair := range map[string]*sealed.Keypair{"operator": operator, "escrow": escrow} {
		restored, summary, err := Read(bytes.NewReader(ciphertext), ReadOptions{Identities: keypair.PrivateKey})
		if err != nil {
			t.Fatalf("Read with %s key: %v", name, err)
		}
		if !summary.Encrypted || summary.Compression != CompressionZstd {
			t.Errorf("%s summary = %+v", name, summary)
		}
		requireRestorable(t, restored, snapshot)
	}
}

func TestWrongIdentityRejected(t *testing.T) {
	t.Parallel()
	owner, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	t.Cleanup(func() { owner.Close() })
	stranger, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	t.Cleanup(func() { stranger.Close() })

	var archive bytes.Buffer
	snapshot := ledger.Snapshot{Version: ledger.SnapshotVersion, TakenAt: epoch}
	if _, err := Write(&archive, snapshot, WriteOptions{Recipients: []string{owner.PublicKey}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, _, err := Read(&archive, ReadOptions{Identities: stranger.PrivateKey}); err == nil {
		t.Fatal("Read with the wrong identity succeeded")
	}
}

func TestCorruptionDetected(t *testing.T) {
	t.Parallel()
	snapshot := populatedSnapshot(t)

	for _, compression := range []Compression{CompressionNone, CompressionZstd} {
		var archive bytes.Buffer
		if _, err := Write(&archive, snapshot, WriteOptions{Compression: compression}); err != nil {
			t.Fatalf("Write: %v", err)
		}
		original := archive.Bytes()

		cases := map[string]func([]byte) []byte{
			"flipped body byte": func(data []byte) []byte {
				data[len(data)-5] ^= 0x40
				return data
			},
			"flipped digest byte": func(data []byte) []byte {
				data[headerSize-1] ^= 0x01
				return data
			},
			"truncated body": func(data []byte) []byte {
				return data[:len(data)-10]
			},
			"truncated header": func(data []byte) []byte {
				return data[:headerSize-4]
			},
			"bad magic": func(data []byte) []byte {
				data[0] = 'X'
				return data
			},
			"unknown compression": func(data []byte) []byte {
				data[len(magic)+1] = 9
				return data
			},
		}
		for name, mutate := range cases {
			t.Run(compression.String()+"/"+name, func(t *testing.T) {
				tampered := mutate(bytes.Clone(original))
				if _, _, err := Read(bytes.NewReader(tampered), ReadOptions{}); !errors.Is(err, ErrCorrupt) {
					t.Errorf("err = %v, want ErrCorrupt", err)
				}
			})
		}
	}
}

func TestUnsupportedVersion(t *testing.T) {
	t.Parallel()
	var archive bytes.Buffer
	snapshot := ledger.Snapshot{Version: ledger.SnapshotVersion, TakenAt: epoch}
	if _, err := Write(&archive, snapshot, WriteOptions{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := archive.Bytes()
	data[len(magic)] = formatVersion + 1
	_, _, err := Read(bytes.NewReader(data), ReadOptions{})
	if err == nil || errors.Is(err, ErrCorrupt) {
		t.Errorf("err = %v, want an unsupported-version error", err)
	}
}

func TestParseCompression(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"none", "lz4", "zstd"} {
		compression, err := ParseCompression(name)
		if err != nil {
			t.Fatalf("ParseCompression(%q): %v", name, err)
		}
		if compression.String() != name {
			t.Errorf("String() = %q, want %q", compression.String(), name)
		}
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Error("ParseCompression(gzip) succeeded")
	}
}
