// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vidora/vidora/internal/media"
	"github.com/vidora/vidora/internal/platform/sec"
	"github.com/vidora/vidora/internal/users/auth"
	"github.com/vidora/vidora/pkg/username"
)

// # Service Layer

// Service orchestrates profile viewing and mutation.
//
// Every mutation invalidates the cached identity so the authentication
// middleware serves fresh data within one request round-trip.
type Service struct {
	profileRepository Repository
	identityCache     auth.IdentityCache
	mediaUploader     media.Uploader
	logger            *slog.Logger
}

// NewService constructs a new profile [Service] with its dependencies.
func NewService(
	repo Repository,
	cache auth.IdentityCache,
	uploader media.Uploader,
	logger *slog.Logger,
) *Service {
	return &Service{
		profileRepository: repo,
		identityCache:     cache,
		mediaUploader:     uploader,
		logger:            logger,
	}
}

// Channel is the public projection of a user profile.
//
// IsOwner tells the frontend whether the viewer is looking at their own page.
type Channel struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	IsOwner       bool   `json:"is_owner"`
}

/*
GetCurrent returns the fresh private profile of the authenticated user.

Description: Reads from the database rather than trusting the cached
identity, so the self-view always reflects the latest mutations.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - *sec.Identity: Sanitized profile
  - error: NotFound if the account no longer exists
*/
func (service *Service) GetCurrent(ctx context.Context, userID string) (*sec.Identity, error) {
	user, err := service.profileRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

/*
UpdateFullName replaces the authenticated user's display name.

Parameters:
  - ctx: context.Context
  - userID: string
  - fullName: string (already validated at the handler boundary)

Returns:
  - *sec.Identity: Updated sanitized profile
  - error: Storage failures
*/
func (service *Service) UpdateFullName(ctx context.Context, userID, fullName string) (*sec.Identity, error) {

	if err := service.profileRepository.UpdateFullName(ctx, userID, fullName); err != nil {
		return nil, fmt.Errorf("profile_service_update_full_name_failed: %w", err)
	}

	service.invalidateIdentity(ctx, userID)
	service.logger.Info("user_full_name_updated", slog.String("user_id", userID))

	return service.GetCurrent(ctx, userID)
}

/*
UpdateAvatar uploads a replacement avatar and stores its public URL.

Parameters:
  - ctx: context.Context
  - userID: string
  - file: auth.UploadFile

Returns:
  - *sec.Identity: Updated sanitized profile
  - error: Upload or storage failures
*/
func (service *Service) UpdateAvatar(ctx context.Context, userID string, file *auth.UploadFile) (*sec.Identity, error) {
	return service.updateImage(ctx, userID, file, "avatars/"+userID,
		service.profileRepository.UpdateAvatarURL, "user_avatar_updated")
}

/*
UpdateCoverImage uploads a replacement cover image and stores its public URL.

Parameters:
  - ctx: context.Context
  - userID: string
  - file: auth.UploadFile

Returns:
  - *sec.Identity: Updated sanitized profile
  - error: Upload or storage failures
*/
func (service *Service) UpdateCoverImage(ctx context.Context, userID string, file *auth.UploadFile) (*sec.Identity, error) {
	return service.updateImage(ctx, userID, file, "covers/"+userID,
		service.profileRepository.UpdateCoverImageURL, "user_cover_image_updated")
}

/*
GetChannel resolves a public channel page by username.

Description: Open to anonymous viewers. The viewerID may be empty; when it
matches the channel owner, IsOwner is set so the frontend can render edit
controls.

Parameters:
  - ctx: context.Context
  - channelUsername: string (raw, normalized here)
  - viewerID: string (empty for anonymous viewers)

Returns:
  - *Channel: Public channel projection
  - error: NotFound for unknown usernames
*/
func (service *Service) GetChannel(ctx context.Context, channelUsername, viewerID string) (*Channel, error) {
	user, err := service.profileRepository.FindByUsername(ctx, username.Normalize(channelUsername))
	if err != nil {
		return nil, err
	}

	return &Channel{
		ID:            user.ID,
		Username:      user.Username,
		FullName:      user.FullName,
		AvatarURL:     user.AvatarURL,
		CoverImageURL: user.CoverImageURL,
		IsOwner:       viewerID != "" && viewerID == user.ID,
	}, nil
}

// updateImage is the shared upload-then-persist path for both image slots.
//
// The object key is stable per user and slot, so a re-upload overwrites the
// previous object instead of leaking orphans in the bucket.
func (service *Service) updateImage(
	ctx context.Context,
	userID string,
	file *auth.UploadFile,
	objectKey string,
	persist func(context.Context, string, string) error,
	event string,
) (*sec.Identity, error) {

	url, err := service.mediaUploader.Upload(ctx, objectKey, file.Reader, file.Size, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("profile_service_image_upload_failed: %w", err)
	}

	if err := persist(ctx, userID, url); err != nil {
		return nil, fmt.Errorf("profile_service_image_persist_failed: %w", err)
	}

	service.invalidateIdentity(ctx, userID)
	service.logger.Info(event, slog.String("user_id", userID))

	return service.GetCurrent(ctx, userID)
}

// invalidateIdentity drops the cached identity after a mutation. Best-effort:
// the cache TTL bounds any stale window if the delete is lost.
func (service *Service) invalidateIdentity(ctx context.Context, userID string) {
	_ = service.identityCache.Delete(ctx, userID)
}
