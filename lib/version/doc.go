// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for tellerd and teller.
//
// Release builds inject the variables with -ldflags:
//
//	go build -ldflags "-X github.com/bureau-foundation/teller/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Development builds fall back to the VCS stamp Go embeds.
package version
