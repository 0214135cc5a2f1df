// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/apperr"
)

func TestIsValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  bool
	}{
		{"alice@example.com", true},
		{"a.b+tag@sub.domain.org", true},
		{"UPPER@EXAMPLE.COM", true},
		{"", false},
		{"no-at-sign", false},
		{"missing@tld", false},
		{"@example.com", false},
		{"spaces in@example.com", false},
	}

	for _, tc := range tests {
		t.Run(tc.email, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsValidEmail(tc.email))
		})
	}
}

func TestIsStrongPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"all classes present", "Abcdef1!", true},
		{"longer with symbol", "Vidor@Pass123", true},
		{"too short", "Ab1!", false},
		{"no uppercase", "abcdef1!", false},
		{"no lowercase", "ABCDEF1!", false},
		{"no digit", "Abcdefg!", false},
		{"no symbol", "Abcdefg1", false},
		{"symbol outside allowed set", "Abcdef1#", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsStrongPassword(tc.password))
		})
	}
}

func TestValidator_Username(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"simple lowercase", "alice", false},
		{"mixed case normalizes", "AlIcE", false},
		{"digits and separators", "a.l-i_ce7", false},
		{"surrounding whitespace trimmed", "  bob  ", false},
		{"embedded space", "ali ce", true},
		{"punctuation outside alphabet", "ali ce!", true},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 33), true},
		{"empty", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			validator := &Validator{}
			err := validator.Username("username", tc.username).Err()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_CollectsAllFailures(t *testing.T) {
	t.Parallel()

	v := &Validator{}
	v.Required("username", "").
		Email("email", "nope").
		Password("password", "weak")

	err := v.Err()
	require.Error(t, err)

	var appError *apperr.AppError
	require.True(t, errors.As(err, &appError))
	assert.Equal(t, 400, appError.HTTPStatus)
	assert.Len(t, appError.Details, 3)
}

func TestValidator_PassesCleanInput(t *testing.T) {
	t.Parallel()

	v := &Validator{}
	v.Required("username", "alice").
		MinLen("username", "alice", 3).
		MaxLen("username", "alice", 32).
		Email("email", "alice@example.com").
		Password("password", "Abcdef1!")

	assert.NoError(t, v.Err())
	assert.False(t, v.HasErrors())
}

func TestValidator_Custom(t *testing.T) {
	t.Parallel()

	newPassword, retyped := "Abcdef1!", "Abcdef1?"

	v := &Validator{}
	v.Custom("retypeNewPassword", newPassword != retyped, "New passwords do not match")

	err := v.Err()
	require.Error(t, err)

	var appError *apperr.AppError
	require.True(t, errors.As(err, &appError))
	require.Len(t, appError.Details, 1)
	assert.Equal(t, "retypeNewPassword", appError.Details[0].Field)
}

func TestValidator_UUID(t *testing.T) {
	t.Parallel()

	valid := &Validator{}
	valid.UUID("id", "0190cb6e-4dce-7a34-91d2-55b7a07b22ad")
	assert.NoError(t, valid.Err())

	invalid := &Validator{}
	invalid.UUID("id", "not-a-uuid")
	assert.Error(t, invalid.Err())
}
