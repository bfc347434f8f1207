// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds passwords and private keys in memory outside
// the Go heap.
//
// A [Buffer] is an anonymous mmap region locked against swap (mlock)
// and excluded from core dumps (MADV_DONTDUMP). Close zeroes, unlocks
// and unmaps it; any later access panics. The teller CLI reads login
// passwords into Buffers with [Prompt] or [ReadFromPath], and tellerd
// keeps age identities for backup decryption in one.
package secret
