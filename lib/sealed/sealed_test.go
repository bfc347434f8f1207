// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func generate(t *testing.T) *Keypair {
	t.Helper()
	keypair, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	t.Cleanup(func() { keypair.Close() })
	return keypair
}

func encrypt(t *testing.T, plaintext []byte, recipients ...string) []byte {
	t.Helper()
	var ciphertext bytes.Buffer
	writer, err := Encrypt(&ciphertext, recipients)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return ciphertext.Bytes()
}

func TestRoundTripMultipleRecipients(t *testing.T) {
	operator := generate(t)
	escrow := generate(t)
	plaintext := bytes.Repeat([]byte("ledger snapshot "), 4096)

	ciphertext := encrypt(t, plaintext, operator.PublicKey, escrow.PublicKey)
	if !IsEncrypted(ciphertext) {
		t.Error("ciphertext lacks the age header")
	}
	if bytes.Contains(ciphertext, []byte("ledger snapshot")) {
		t.Error("plaintext visible in ciphertext")
	}

	for name, keypair := range map[string]*Keypair{"operator": operator, "escrow": escrow} {
		reader, err := Decrypt(bytes.NewReader(ciphertext), keypair.PrivateKey)
		if err != nil {
			t.Fatalf("%s Decrypt: %v", name, err)
		}
		got, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("%s ReadAll: %v", name, err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Errorf("%s decrypted %d bytes, want %d", name, len(got), len(plaintext))
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	owner := generate(t)
	stranger := generate(t)
	ciphertext := encrypt(t, []byte("balances"), owner.PublicKey)
	if _, err := Decrypt(bytes.NewReader(ciphertext), stranger.PrivateKey); err == nil {
		t.Error("Decrypt succeeded with the wrong identity")
	}
}

func TestParseRecipients(t *testing.T) {
	keypair := generate(t)
	recipients, err := ParseRecipients([]string{"# operator", "", "  " + keypair.PublicKey + "  "})
	if err != nil {
		t.Fatalf("ParseRecipients: %v", err)
	}
	if len(recipients) != 1 {
		t.Errorf("got %d recipients, want 1", len(recipients))
	}

	if _, err := ParseRecipients([]string{"# nothing here"}); err == nil {
		t.Error("ParseRecipients accepted an empty list")
	}
	if _, err := ParseRecipients([]string{"age1notakey"}); err == nil {
		t.Error("ParseRecipients accepted a malformed key")
	}
	if err := ParsePublicKey(keypair.PublicKey); err != nil {
		t.Errorf("ParsePublicKey: %v", err)
	}
}

func TestReadRecipientsFile(t *testing.T) {
	first := generate(t)
	second := generate(t)
	path := filepath.Join(t.TempDir(), "recipients.txt")
	content := strings.Join([]string{"# backups", first.PublicKey, second.PublicKey, ""}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing recipients: %v", err)
	}
	keys, err := ReadRecipientsFile(path)
	if err != nil {
		t.Fatalf("ReadRecipientsFile: %v", err)
	}
	recipients, err := ParseRecipients(keys)
	if err != nil {
		t.Fatalf("ParseRecipients: %v", err)
	}
	if len(recipients) != 2 {
		t.Errorf("got %d recipients, want 2", len(recipients))
	}
}
