// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

/*
Package auth implements the user identity and session management layer.

It defines the core domain entity (User) and the logic for registration,
credential verification, dual-token session issuance, rotation, and account
credential changes.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
external dependencies and encapsulates all business rules related to user
identity and the single-slot refresh session.
*/
package auth

import (
	"time"

	"github.com/vidora/vidora/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Vidora platform.
//
// RefreshToken is the single session slot: at most one refresh token is valid
// per user at any time, and issuing a new one (login or rotation) invalidates
// the previous one by overwrite. A nil slot means no active session.
type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	FullName      string  `json:"full_name"`
	PasswordHash  string  `json:"-"` // Explicitly omitted from JSON for security.
	AvatarURL     string  `json:"avatar_url,omitempty"`
	CoverImageURL string  `json:"cover_image_url,omitempty"`
	RefreshToken  *string `json:"-"` // Current session slot. Omitted for security.

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity returns the sanitized projection of the user that is safe to
// attach to a request context or return to clients.
func (u *User) Identity() *sec.Identity {
	return &sec.Identity{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername          = "username"
	FieldEmail             = "email"
	FieldFullName          = "fullName"
	FieldPassword          = "password"
	FieldAvatar            = "avatar"
	FieldCoverImage        = "coverImage"
	FieldRefreshToken      = "refreshToken"
	FieldAccessToken       = "accessToken"
	FieldCurrentPassword   = "currentPassword"
	FieldNewPassword       = "newPassword"
	FieldRetypeNewPassword = "retypeNewPassword"
	FieldUser              = "user"
)
