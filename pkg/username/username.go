// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

// Package username normalizes account usernames into their canonical stored form.
//
// # Usage
//
// Usernames are unique case-insensitively: "Alice", "ALICE", and "alice" are
// the same account. Normalization happens once at the boundary (registration,
// login, channel lookup) so that storage and comparison always operate on the
// canonical form.
package username

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// validUsername matches the canonical username alphabet: lowercase letters,
// digits, underscores, dots, and hyphens.
var validUsername = regexp.MustCompile(`^[a-z0-9._-]+$`)

// Normalize converts a raw username into its canonical stored form.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Applies Unicode NFKC normalization (folds compatibility variants).
// 3. Lowercases.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = norm.NFKC.String(s)
	return strings.ToLower(s)
}

// IsValid reports whether a normalized username is within the allowed
// alphabet and length bounds.
func IsValid(normalized string) bool {
	if len(normalized) < 3 || len(normalized) > 32 {
		return false
	}
	return validUsername.MatchString(normalized)
}
