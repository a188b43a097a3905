// Gridwatch - TV Channel, Program, and Watch Activity Store
// Copyright 2026 Gridwatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gridwatch/gridwatch

package provider

import "errors"

// Sentinel errors mapped onto HTTP statuses by the API layer.
var (
	// ErrSecurity is a capability or ownership violation.
	ErrSecurity = errors.New("access denied")
	// ErrInvalidArgument is a malformed or out-of-contract request.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound means no row matched a single-item request.
	ErrNotFound = errors.New("not found")
	// ErrWriteFailed means the engine rejected a write.
	ErrWriteFailed = errors.New("write failed")
)
