// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package passhash hashes and verifies account passwords.
//
// New hashes are argon2id in the PHC string format
// ($argon2id$v=19$m=...,t=...,p=...$salt$key). Verification also
// accepts bcrypt hashes ($2a$, $2b$, $2y$), which legacy seed files
// carry; [Hasher.Verify] reports NeedsRehash for them so the caller
// can upgrade the stored hash after a successful login.
package passhash

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnknownFormat is returned when a stored hash is neither argon2id
// nor bcrypt.
var ErrUnknownFormat = errors.New("passhash: unrecognized hash format")

// DefaultParams are the OWASP-recommended argon2id parameters for
// interactive logins: 19 MiB, two passes, one lane.
var DefaultParams = &argon2id.Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// InsecureTestParams make hashing nearly free. They exist for tests
// and must never hash a stored password.
var InsecureTestParams = &argon2id.Params{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher creates and verifies password hashes. The zero value is not
// usable; construct with New.
type Hasher struct {
	params *argon2id.Params

	// decoy is a hash of a random password, verified against when the
	// account being logged into does not exist so that both paths
	// spend the same time.
	decoy string
}

// New returns a Hasher using params, or DefaultParams when nil.
func New(params *argon2id.Params) (*Hasher, error) {
	if params == nil {
		params = DefaultParams
	}
	decoy, err := argon2id.CreateHash("teller-decoy-password", params)
	if err != nil {
		return nil, fmt.Errorf("passhash: creating decoy hash: %w", err)
	}
	return &Hasher{params: params, decoy: decoy}, nil
}

// Hash returns the argon2id PHC string for password.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, h.params)
	if err != nil {
		return "", fmt.Errorf("passhash: %w", err)
	}
	return hash, nil
}

// Result is the outcome of a successful Verify call.
type Result struct {
	// Match is true when the password matches the hash.
	Match bool

	// NeedsRehash is true when the hash matched but is not in the
	// current format, so the caller should store a fresh Hash.
	NeedsRehash bool
}

// Verify checks password against a stored hash.
func (h *Hasher) Verify(password, hash string) (Result, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		match, err := argon2id.ComparePasswordAndHash(password, hash)
		if err != nil {
			return Result{}, fmt.Errorf("passhash: %w", err)
		}
		return Result{Match: match}, nil

	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Result{}, nil
		}
		if err != nil {
			return Result{}, fmt.Errorf("passhash: %w", err)
		}
		return Result{Match: true, NeedsRehash: true}, nil

	default:
		return Result{}, ErrUnknownFormat
	}
}

// VerifyDecoy spends the same work as a real Verify against an
// argon2id hash and always reports no match.
func (h *Hasher) VerifyDecoy(password string) {
	_, _ = argon2id.ComparePasswordAndHash(password, h.decoy)
}

// IsHash reports whether value looks like a stored hash this package
// can verify. Seed files use it to accept pre-hashed passwords.
func IsHash(value string) bool {
	for _, prefix := range []string{"$argon2id$", "$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
