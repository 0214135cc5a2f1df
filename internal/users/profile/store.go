// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

/*
Package profile implements viewing and mutating user profile data.

It covers the authenticated self-view, the targeted profile mutations
(full name, avatar, cover image), and the public channel page.

# Architecture

The package reuses the [auth.User] entity as its storage shape but exposes
only sanitized projections outward. Mutations invalidate the identity cache
so the middleware picks up fresh data promptly.
*/
package profile

import (
	"context"

	"github.com/vidora/vidora/internal/users/auth"
)

// # Storage Contracts

// Repository defines the persistence operations the profile service needs.
//
// All updates are column-targeted: a profile mutation never touches the
// password hash or the refresh token slot.
type Repository interface {
	// FindByID loads a user by primary key.
	FindByID(ctx context.Context, userID string) (*auth.User, error)

	// FindByUsername loads a user by their unique normalized username.
	FindByUsername(ctx context.Context, username string) (*auth.User, error)

	// UpdateFullName replaces the user's display name.
	UpdateFullName(ctx context.Context, userID, fullName string) error

	// UpdateAvatarURL replaces the user's avatar URL.
	UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error

	// UpdateCoverImageURL replaces the user's cover image URL.
	UpdateCoverImageURL(ctx context.Context, userID, coverImageURL string) error
}
