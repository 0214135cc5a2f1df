// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidora/vidora/internal/platform/dberr"
	"github.com/vidora/vidora/internal/users/auth"
)

// # Profile Repository

// PostgresRepository implements [Repository] on the shared users.account table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the profile Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const profileColumns = `id, username, email, fullname, passwordhash, avatarurl, coverimageurl, refreshtoken, createdat, updatedat`

// FindByID retrieves a user record by their unique ID.
func (repository *PostgresRepository) FindByID(ctx context.Context, userID string) (*auth.User, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM users.account
		WHERE id = $1`

	return repository.scanOne(repository.pool.QueryRow(ctx, query, userID), "find_by_id")
}

// FindByUsername retrieves a user record by their unique (normalized) username.
func (repository *PostgresRepository) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM users.account
		WHERE username = $1`

	return repository.scanOne(repository.pool.QueryRow(ctx, query, username), "find_by_username")
}

// UpdateFullName replaces the display name column only.
func (repository *PostgresRepository) UpdateFullName(ctx context.Context, userID, fullName string) error {
	return repository.updateColumn(ctx, "fullname", userID, fullName, "update_full_name")
}

// UpdateAvatarURL replaces the avatar URL column only.
func (repository *PostgresRepository) UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error {
	return repository.updateColumn(ctx, "avatarurl", userID, avatarURL, "update_avatar_url")
}

// UpdateCoverImageURL replaces the cover image URL column only.
func (repository *PostgresRepository) UpdateCoverImageURL(ctx context.Context, userID, coverImageURL string) error {
	return repository.updateColumn(ctx, "coverimageurl", userID, coverImageURL, "update_cover_image_url")
}

// scanOne hydrates a user from a single-row query.
func (repository *PostgresRepository) scanOne(row pgx.Row, operation string) (*auth.User, error) {
	user := &auth.User{}
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.Wrap(err, "User")
		}
		return nil, fmt.Errorf("postgres_profile_repo_%s_failed: %w", operation, err)
	}
	return user, nil
}

// updateColumn writes a single mutable profile column.
//
// The column name is always one of the fixed callers above, never user input.
func (repository *PostgresRepository) updateColumn(ctx context.Context, column, userID, value, operation string) error {
	query := fmt.Sprintf(`
		UPDATE users.account
		SET %s = $2, updatedat = $3
		WHERE id = $1`, column)

	tag, err := repository.pool.Exec(ctx, query, userID, value, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_profile_repo_%s_failed: %w", operation, err)
	}

	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "User")
	}

	return nil
}
