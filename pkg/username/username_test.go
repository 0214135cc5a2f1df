// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package username

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"already canonical", "alice", "alice"},
		{"uppercase folded", "ALICE", "alice"},
		{"mixed case", "AlIcE", "alice"},
		{"surrounding whitespace", "  alice\t", "alice"},
		{"fullwidth compatibility form", "ａｌｉｃｅ", "alice"},
		{"digits and separators kept", "a.b_c-9", "a.b_c-9"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Normalize(tc.raw))
		})
	}
}

// Normalization is idempotent: applying it twice changes nothing.
func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"Alice", "  BOB ", "ａｂ", "a.b_c-9"} {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"simple", "alice", true},
		{"minimum length", "abc", true},
		{"maximum length", strings.Repeat("a", 32), true},
		{"separators allowed", "a.b_c-9", true},
		{"too short", "ab", false},
		{"too long", strings.Repeat("a", 33), false},
		{"uppercase rejected pre-normalization", "Alice", false},
		{"spaces rejected", "a li ce", false},
		{"symbols rejected", "alice!", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsValid(tc.value))
		})
	}
}
