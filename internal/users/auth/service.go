// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vidora/vidora/internal/media"
	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/ctxutil"
	"github.com/vidora/vidora/internal/platform/sec"
	"github.com/vidora/vidora/pkg/username"
	"github.com/vidora/vidora/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for minting and checking session tokens.
//
// Access and refresh tokens are signed with distinct secrets; the provider is
// the only component that ever touches either secret.
type TokenProvider interface {
	// IssueAccessToken creates a short-lived signed token for the given user.
	IssueAccessToken(userID, userName string) (string, error)

	// IssueRefreshToken creates a long-lived signed token for the given user.
	IssueRefreshToken(userID string) (string, error)

	// VerifyRefreshToken checks signature and expiry against the refresh secret.
	VerifyRefreshToken(tokenStr string) (*sec.AuthClaims, error)

	// AccessTTL / RefreshTTL expose the configured validity windows
	// (used for cookie expiries).
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// login, or rotation logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	identityCache  IdentityCache
	tokenProvider  TokenProvider
	mediaUploader  media.Uploader
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	cache IdentityCache,
	tokenProv TokenProvider,
	uploader media.Uploader,
) *Service {
	return &Service{
		userRepository: userRepo,
		identityCache:  cache,
		tokenProvider:  tokenProv,
		mediaUploader:  uploader,
	}
}

// UploadFile carries one multipart file from the handler boundary into the
// service without the service touching net/http.
type UploadFile struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
//
// Avatar is required; CoverImage is optional (nil). Both are delegated to the
// media-hosting collaborator before the user record is created.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     *UploadFile
	CoverImage *UploadFile
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member, handling username normalization,
media upload delegation, and password hashing. The stored record never
contains the plaintext password.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity (refresh slot empty)
  - error: Conflict (if identity exists), Internal (hash/upload), or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {

	// Usernames are unique case-insensitively; normalize before any check.
	normalizedUsername := username.Normalize(input.Username)

	// Verify email uniqueness. Return a client-safe Conflict error.
	_, err := service.userRepository.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict error.
	_, err = service.userRepository.FindByUsername(ctx, normalizedUsername)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Time-sortable ID, generated up front so media keys can reference it.
	userID := uuid.New()

	// Delegate the required avatar to the media collaborator.
	avatarURL, err := service.mediaUploader.Upload(ctx, "avatars/"+userID, input.Avatar.Reader, input.Avatar.Size, input.Avatar.ContentType)
	if err != nil {
		return nil, fmt.Errorf("auth_service_avatar_upload_failed: %w", err)
	}

	// Cover image is optional; an upload failure here is not fatal to enrollment.
	coverImageURL := ""
	if input.CoverImage != nil {
		if url, coverErr := service.mediaUploader.Upload(ctx, "covers/"+userID, input.CoverImage.Reader, input.CoverImage.Size, input.CoverImage.ContentType); coverErr == nil {
			coverImageURL = url
		}
	}

	user := &User{
		ID:            userID,
		Username:      normalizedUsername,
		Email:         input.Email,
		FullName:      input.FullName,
		PasswordHash:  hashedPassword,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
	}

	// Persist the user to the database. Media was uploaded first, so a failed
	// persist removes the objects again (best effort) to avoid orphaning them.
	if err := service.userRepository.Create(ctx, user); err != nil {
		_ = service.mediaUploader.Remove(ctx, "avatars/"+userID)
		if coverImageURL != "" {
			_ = service.mediaUploader.Remove(ctx, "covers/"+userID)
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Can be Username or Email
	Password string
}

// Session represents a successfully established or rotated user session.
type Session struct {
	AccessToken          string
	RefreshToken         string
	AccessTokenExpiresAt time.Time
	RefreshExpiresAt     time.Time
	User                 *User
}

/*
Login validates user credentials and issues the dual-token session.

Description: Verifies identity, performs constant-time password comparison,
and installs the fresh refresh token as the single session slot (any previous
session is implicitly invalidated by the overwrite).

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *Session: Transport-ready session credentials
  - error: NotFound (unknown identity), Unauthorized (wrong password), or internal failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {

	// Flexible login: look up by Email or normalized Username
	user, err := service.userRepository.FindByEmail(ctx, input.Login)
	if err != nil {
		user, err = service.userRepository.FindByUsername(ctx, username.Normalize(input.Login))
	}

	if err != nil {
		return nil, apperr.NotFound("User")
	}

	// bcrypt's comparison is constant-time, preventing timing attacks.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid user credentials")
	}

	session, err := service.issueSession(user)
	if err != nil {
		return nil, err
	}

	// Install the new refresh token as the current session slot. A failed
	// login never reaches this point, so the store is untouched on rejection.
	if err := service.userRepository.SetRefreshToken(ctx, user.ID, &session.RefreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_session_persist_failed: %w", err)
	}

	return session, nil
}

/*
Logout clears the user's session slot.

Description: Ensures the stored refresh token can never be exchanged again.
Idempotent: logging out an already-logged-out identity is a no-op success.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(ctx context.Context, userID string) error {

	if err := service.userRepository.SetRefreshToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	// Best-effort cache cleanup; the TTL bounds any stale window.
	_ = service.identityCache.Delete(ctx, userID)

	return nil
}

// # Session Rotation

/*
Refresh implements the refresh-token rotation protocol.

Description: Verifies the presented refresh token against the refresh secret,
resolves its identity, and exchanges it for a brand-new token pair via an
atomic compare-and-set on the session slot. The old refresh token becomes
permanently invalid even if not expired.

A token that passes signature verification but fails the exact-equality
compare is either a replayed old token or a lost race with a concurrent
rotation; it is logged as a security event and rejected.

Parameters:
  - ctx: context.Context
  - presentedToken: string

Returns:
  - *Session: New session credentials
  - error: Unauthorized on any verification/compare failure
*/
func (service *Service) Refresh(ctx context.Context, presentedToken string) (*Session, error) {

	// 1. Signature and expiry check against the refresh secret. The client
	// only ever sees a generic message regardless of the failure mode.
	claims, err := service.tokenProvider.VerifyRefreshToken(presentedToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// 2. Resolve the identity embedded in the token.
	user, err := service.userRepository.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// 3. Mint the replacement pair before touching the slot; a signing
	// failure must leave the current session intact.
	session, err := service.issueSession(user)
	if err != nil {
		return nil, err
	}

	// 4. Atomic compare-and-set: succeeds only if the presented token still
	// equals the stored slot.
	err = service.userRepository.SwapRefreshToken(ctx, user.ID, presentedToken, session.RefreshToken)
	if err != nil {
		if err == ErrRefreshTokenMismatch {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "security_event_refresh_token_reuse",
				slog.String("user_id", user.ID),
			)
			return nil, apperr.Unauthorized("Refresh token is expired or already used")
		}
		return nil, fmt.Errorf("auth_service_refresh_swap_failed: %w", err)
	}

	return session, nil
}

// # Credential Changes

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Re-verifies the current password before accepting the new one.
The session slot is intentionally left untouched: a password change does not
force re-authentication.

Parameters:
  - ctx: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: Forbidden (wrong current password) or storage failures
*/
func (service *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {

	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	// The caller must prove knowledge of the current password.
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Forbidden("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	_ = service.identityCache.Delete(ctx, userID)

	return nil
}

// # Identity Resolution

/*
ResolveIdentity resolves a verified user ID into a sanitized identity.

Description: Serves the authentication middleware. Consults the volatile
cache first and falls back to the database, re-priming the cache on a miss.
The projection never includes the password hash or the refresh token.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - *sec.Identity: Sanitized identity
  - error: NotFound if the account no longer exists
*/
func (service *Service) ResolveIdentity(ctx context.Context, userID string) (*sec.Identity, error) {

	if identity, err := service.identityCache.Get(ctx, userID); err == nil {
		return identity, nil
	}

	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	identity := user.Identity()

	// Cache failures are invisible to the caller; the database already answered.
	_ = service.identityCache.Set(ctx, identity, IdentityCacheTTL)

	return identity, nil
}

// issueSession mints a fresh access/refresh pair for the user.
//
// Issuance is a pure function of identity + current time + secrets; a signing
// failure is fatal to the request and surfaces as an internal error.
func (service *Service) issueSession(user *User) (*Session, error) {
	accessToken, err := service.tokenProvider.IssueAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_access_token_failed: %w", err))
	}

	refreshToken, err := service.tokenProvider.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_refresh_token_failed: %w", err))
	}

	now := time.Now()
	return &Session{
		AccessToken:          accessToken,
		RefreshToken:         refreshToken,
		AccessTokenExpiresAt: now.Add(service.tokenProvider.AccessTTL()),
		RefreshExpiresAt:     now.Add(service.tokenProvider.RefreshTTL()),
		User:                 user,
	}, nil
}
