// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/vidora/vidora/internal/platform/sec"
)

// # Store Sentinels

var (
	// ErrRefreshTokenMismatch is returned by [UserRepository.SwapRefreshToken]
	// when the presented token does not equal the stored slot. After a
	// successful signature verification this indicates a replayed old token
	// or a lost race with a concurrent rotation.
	ErrRefreshTokenMismatch = errors.New("auth: presented refresh token does not match stored session")

	// ErrCacheMiss is returned by [IdentityCache.Get] when the identity is
	// not cached. A miss is not a failure; callers fall through to the store.
	ErrCacheMiss = errors.New("auth: identity not in cache")
)

// # User Data Access

// UserRepository defines the data access contract for user accounts,
// including the single-slot refresh session.
type UserRepository interface {

	// FindByID returns the account with the given ID.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account with the given email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername returns the account with the given (normalized) username.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create persists a brand-new user account to the storage.
	Create(ctx context.Context, user *User) error

	// UpdatePassword replaces only the user's password hash.
	UpdatePassword(ctx context.Context, userID, newHash string) error

	// SetRefreshToken overwrites the user's session slot unconditionally.
	// A nil token clears the slot (logout).
	SetRefreshToken(ctx context.Context, userID string, token *string) error

	// SwapRefreshToken atomically replaces the session slot with replacement
	// if and only if the slot currently equals presented (exact equality).
	//
	// The comparison and the write are a single conditional update: of two
	// concurrent rotations racing on the same user, exactly one succeeds
	// and the loser receives [ErrRefreshTokenMismatch].
	SwapRefreshToken(ctx context.Context, userID, presented, replacement string) error
}

// # Identity Cache

// IdentityCache is a volatile, TTL-bound store of sanitized identities,
// consulted by the authentication middleware before hitting the database.
type IdentityCache interface {

	// Set stores the identity under its user ID for the given duration.
	Set(ctx context.Context, identity *sec.Identity, ttl time.Duration) error

	// Get returns the cached identity, or [ErrCacheMiss].
	Get(ctx context.Context, userID string) (*sec.Identity, error)

	// Delete drops the cached identity. Called on any profile or credential
	// mutation and on logout.
	Delete(ctx context.Context, userID string) error
}
