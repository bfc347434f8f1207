// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"

	"github.com/bureau-foundation/teller/lib/secret"
)

// Magic is the first line of every age file.
const Magic = "age-encryption.org/v1\n"

// Keypair is an x25519 keypair. PublicKey is safe to publish.
type Keypair struct {
	PrivateKey *secret.Buffer
	PublicKey  string
}

// Close releases the private key memory. It is idempotent.
func (k *Keypair) Close() error {
	if k.PrivateKey != nil {
		return k.PrivateKey.Close()
	}
	return nil
}

// GenerateKeypair returns a fresh keypair. The caller must Close it.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age keypair: %w", err)
	}
	privateKey, err := secret.NewFromBytes([]byte(identity.String()))
	if err != nil {
		return nil, fmt.Errorf("protecting private key: %w", err)
	}
	return &Keypair{PrivateKey: privateKey, PublicKey: identity.Recipient().String()}, nil
}

// ParseRecipients parses age public keys, one per entry. Blank entries
// and # comments are skipped.
func ParseRecipients(keys []string) ([]age.Recipient, error) {
	var recipients []age.Recipient
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" || strings.HasPrefix(key, "#") {
			continue
		}
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}
	if len(recipients) == 0 {
		return nil, errors.New("at least one recipient is required")
	}
	return recipients, nil
}

// ReadRecipientsFile reads a recipients file: one public key per line.
func ReadRecipientsFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recipients file: %w", err)
	}
	defer file.Close()
	var keys []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		keys = append(keys, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return keys, nil
}

// Encrypt returns a writer that encrypts everything written to it into
// destination. Close finishes the age stream but does not close
// destination.
func Encrypt(destination io.Writer, recipientKeys []string) (io.WriteCloser, error) {
	recipients, err := ParseRecipients(recipientKeys)
	if err != nil {
		return nil, err
	}
	writer, err := age.Encrypt(destination, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	return writer, nil
}

// Decrypt returns a reader of source's plaintext. identities holds one
// or more AGE-SECRET-KEY-1 lines, as written by tellerd keygen; it is
// borrowed and not closed.
func Decrypt(source io.Reader, identities *secret.Buffer) (io.Reader, error) {
	parsed, err := age.ParseIdentities(bytes.NewReader(identities.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("parsing identities: %w", err)
	}
	reader, err := age.Decrypt(source, parsed...)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return reader, nil
}

// IsEncrypted reports whether header starts an age file.
func IsEncrypted(header []byte) bool {
	return bytes.HasPrefix(header, []byte(Magic))
}

// ParsePublicKey validates an age public key.
func ParsePublicKey(publicKey string) error {
	if _, err := age.ParseX25519Recipient(publicKey); err != nil {
		return fmt.Errorf("invalid age public key: %w", err)
	}
	return nil
}
