// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidora/vidora/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the [UserRepository] interface using pgx.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows or unique violations) are mapped
// to domain-friendly [apperr.AppError] types via dberr to avoid leaking storage
// implementation details.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, username, email, fullname, passwordhash, avatarurl, coverimageurl, refreshtoken, createdat, updatedat`

// scanUser hydrates a User from a row with the standard column order.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.CoverImageURL,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create persists a new user record into the users.account table.
//
// Timestamps are initialized here if not provided. Unique violations on
// username or email surface as Conflict errors.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, fullname, passwordhash, avatarurl, coverimageurl, refreshtoken, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.AvatarURL,
		user.CoverImageURL,
		user.RefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_create_failed: %w", err), "User")
	}

	return nil
}

// FindByEmail retrieves a user record by their unique email address.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE email = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.Wrap(err, "User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

// FindByUsername retrieves a user record by their unique (normalized) username.
func (repository *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE username = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.Wrap(err, "User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

// FindByID retrieves a user record by their unique ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.Wrap(err, "User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

// UpdatePassword updates only the password hash for a specific user.
func (repository *PostgresUserRepository) UpdatePassword(ctx context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

// SetRefreshToken overwrites the session slot unconditionally.
//
// Used by login (set) and logout (clear). The write is a single atomic
// UPDATE, so a request aborted mid-flight cannot leave the slot half-written.
func (repository *PostgresUserRepository) SetRefreshToken(ctx context.Context, userID string, token *string) error {
	const query = `
		UPDATE users.account
		SET refreshtoken = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, userID, token, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_refresh_token_failed: %w", err)
	}

	return nil
}

// SwapRefreshToken performs the rotation compare-and-set.
//
// The WHERE clause carries the equality check, so the read-compare-write is a
// single statement the database serializes per row: of two concurrent
// rotations presenting the same old token, exactly one succeeds.
func (repository *PostgresUserRepository) SwapRefreshToken(ctx context.Context, userID, presented, replacement string) error {
	const query = `
		UPDATE users.account
		SET refreshtoken = $3, updatedat = $4
		WHERE id = $1 AND refreshtoken = $2`

	tag, err := repository.pool.Exec(ctx, query, userID, presented, replacement, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_swap_refresh_token_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrRefreshTokenMismatch
	}

	return nil
}
