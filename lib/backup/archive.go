// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/teller/lib/bank"
	"github.com/bureau-foundation/teller/lib/codec"
	"github.com/bureau-foundation/teller/lib/ledger"
	"github.com/bureau-foundation/teller/lib/sealed"
	"github.com/bureau-foundation/teller/lib/secret"
)

const (
	magic         = "TELLERBK"
	formatVersion = 1
	headerSize    = len(magic) + 1 + 1 + 8 + 32
)

// MaxSnapshotSize bounds the uncompressed snapshot an archive may
// declare.
const MaxSnapshotSize = 4 << 30

var (
	// ErrCorrupt means the archive is truncated, malformed or fails its
	// digest check.
	ErrCorrupt = errors.New("backup: archive is corrupt")

	// ErrEncrypted means the archive is age-encrypted and no identity
	// was supplied.
	ErrEncrypted = errors.New("backup: archive is encrypted")
)

// WriteOptions controls Write.
type WriteOptions struct {
	Compression Compression

	// Recipients are age public keys. Empty means unencrypted.
	Recipients []string
}

// ReadOptions controls Read.
type ReadOptions struct {
	// Identities decrypts age-encrypted archives. It is borrowed.
	Identities *secret.Buffer
}

// Summary describes an archive.
type Summary struct {
	Compression  Compression
	Encrypted    bool
	Digest       bank.Digest
	Size         uint64
	TakenAt      time.Time
	Users        int
	Retired      int
	Transactions int
}

// Write encodes snapshot as an archive to w. If the body does not
// shrink under the requested compression it is stored uncompressed.
func Write(w io.Writer, snapshot ledger.Snapshot, options WriteOptions) (Summary, error) {
	raw, err := codec.Marshal(snapshot)
	if err != nil {
		return Summary{}, fmt.Errorf("encoding snapshot: %w", err)
	}
	compression := options.Compression
	body, err := compress(raw, compression)
	if errors.Is(err, errIncompressible) {
		compression, body = CompressionNone, raw
	} else if err != nil {
		return Summary{}, err
	}

	summary := summarize(snapshot)
	summary.Compression = compression
	summary.Digest = bank.Digest(blake3.Sum256(raw))
	summary.Size = uint64(len(raw))
	summary.Encrypted = len(options.Recipients) > 0

	destination := w
	var encryptor io.WriteCloser
	if summary.Encrypted {
		encryptor, err = sealed.Encrypt(w, options.Recipients)
		if err != nil {
			return Summary{}, err
		}
		destination = encryptor
	}

	header := make([]byte, 0, headerSize)
	header = append(header, magic...)
	header = append(header, formatVersion, byte(compression))
	header = binary.BigEndian.AppendUint64(header, summary.Size)
	header = append(header, summary.Digest[:]...)
	if _, err := destination.Write(header); err != nil {
		return Summary{}, fmt.Errorf("writing archive header: %w", err)
	}
	if _, err := destination.Write(body); err != nil {
		return Summary{}, fmt.Errorf("writing archive body: %w", err)
	}
	if encryptor != nil {
		if err := encryptor.Close(); err != nil {
			return Summary{}, fmt.Errorf("finishing encryption: %w", err)
		}
	}
	return summary, nil
}

// Read decodes an archive, decrypting it first when it carries an age
// header. The snapshot's hash chains are not verified here;
// [ledger.Snapshotter.Restore] does that.
func Read(r io.Reader, options ReadOptions) (ledger.Snapshot, Summary, error) {
	buffered := bufio.NewReader(r)
	var summary Summary
	peek, _ := buffered.Peek(len(sealed.Magic))
	source := io.Reader(buffered)
	if sealed.IsEncrypted(peek) {
		if options.Identities == nil {
			return ledger.Snapshot{}, Summary{}, ErrEncrypted
		}
		plaintext, err := sealed.Decrypt(buffered, options.Identities)
		if err != nil {
			return ledger.Snapshot{}, Summary{}, err
		}
		source = plaintext
		summary.Encrypted = true
	}

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(source, header); err != nil {
		return ledger.Snapshot{}, Summary{}, fmt.Errorf("%w: reading header: %v", ErrCorrupt, err)
	}
	if !bytes.Equal(header[:len(magic)], []byte(magic)) {
		return ledger.Snapshot{}, Summary{}, fmt.Errorf("%w: not a teller backup", ErrCorrupt)
	}
	offset := len(magic)
	if version := header[offset]; version != formatVersion {
		return ledger.Snapshot{}, Summary{}, fmt.Errorf("backup: unsupported archive version %d", version)
	}
	summary.Compression = Compression(header[offset+1])
	summary.Size = binary.BigEndian.Uint64(header[offset+2:])
	copy(summary.Digest[:], header[offset+10:])

	body, err := io.ReadAll(io.LimitReader(source, MaxSnapshotSize+1))
	if err != nil {
		return ledger.Snapshot{}, Summary{}, fmt.Errorf("reading archive body: %w", err)
	}
	raw, err := decompress(body, summary.Compression, summary.Size)
	if err != nil {
		return ledger.Snapshot{}, Summary{}, err
	}
	if bank.Digest(blake3.Sum256(raw)) != summary.Digest {
		return ledger.Snapshot{}, Summary{}, fmt.Errorf("%w: digest mismatch", ErrCorrupt)
	}

	var snapshot ledger.Snapshot
	if err := codec.UnmarshalBulk(raw, &snapshot); err != nil {
		return ledger.Snapshot{}, Summary{}, fmt.Errorf("%w: decoding snapshot: %v", ErrCorrupt, err)
	}
	if snapshot.Version != ledger.SnapshotVersion {
		return ledger.Snapshot{}, Summary{}, fmt.Errorf("backup: unsupported snapshot version %d", snapshot.Version)
	}

	counts := summarize(snapshot)
	summary.TakenAt = counts.TakenAt
	summary.Users = counts.Users
	summary.Retired = counts.Retired
	summary.Transactions = counts.Transactions
	return snapshot, summary, nil
}

func summarize(snapshot ledger.Snapshot) Summary {
	return Summary{
		TakenAt:      snapshot.TakenAt,
		Users:        len(snapshot.Users),
		Retired:      len(snapshot.Retired),
		Transactions: len(snapshot.Transactions),
	}
}
