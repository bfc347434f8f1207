// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the YAML configuration of the Teller server.
//
// Configuration comes from a single file named by the TELLER_CONFIG
// environment variable (via [Load]) or a --config flag (via
// [LoadFile]). There is no discovery and no fallback file. Environment
// variables never override values; they are only substituted where a
// value uses ${VAR} or ${VAR:-default}.
//
// The file may carry development, staging and production sections
// whose non-zero fields override the base values when
// [Config].Environment matches. Unknown keys are rejected.
package config
