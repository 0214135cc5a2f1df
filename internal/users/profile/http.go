// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package profile

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidora/vidora/internal/platform/apperr"
	requestutil "github.com/vidora/vidora/internal/platform/request"
	"github.com/vidora/vidora/internal/platform/respond"
	"github.com/vidora/vidora/internal/platform/sec"
	"github.com/vidora/vidora/internal/platform/validate"
	"github.com/vidora/vidora/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements the HTTP delivery layer for profile endpoints.
type Handler struct {
	profileService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{profileService: service}
}

// Register attaches the profile routes to the shared users router.
//
// requireAuth guards the self-view and mutation endpoints; optionalAuth
// wraps the public channel page so an authenticated viewer is recognized
// without being required.
//
// # Endpoints
//   - GET   /current-user         : Authenticated self-view (protected).
//   - PATCH /update-fullname      : Replace the display name (protected).
//   - PATCH /update-avatar        : Replace the avatar image (protected).
//   - PATCH /update-cover-image   : Replace the cover image (protected).
//   - GET   /channel/{username}   : Public channel page (optional auth).
func (handler *Handler) Register(router chi.Router, requireAuth, optionalAuth func(http.Handler) http.Handler) {

	router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/current-user", handler.currentUser)
		r.Patch("/update-fullname", handler.updateFullName)
		r.Patch("/update-avatar", handler.updateAvatar)
		r.Patch("/update-cover-image", handler.updateCoverImage)
	})

	router.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/channel/{username}", handler.channel)
	})
}

// # Request Payloads

type updateFullNameRequest struct {
	FullName string `json:"fullName"`
}

/*
CurrentUser returns the authenticated user's own profile.

GET /api/v1/users/current-user (protected)

Response:
  - 200: Identity: Sanitized self-view
  - 401: ErrUnauthorized: Not authenticated
*/
func (handler *Handler) currentUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.profileService.GetCurrent(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity, "Current user fetched successfully")
}

/*
UpdateFullName replaces the authenticated user's display name.

PATCH /api/v1/users/update-fullname (protected)

Request:
  - Body: updateFullNameRequest (FullName)

Response:
  - 200: Identity: Updated sanitized profile
  - 400: ErrInvalidJSON: Missing or too-short name
*/
func (handler *Handler) updateFullName(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateFullNameRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldFullName, input.FullName).
		MinLen(auth.FieldFullName, input.FullName, 3).
		MaxLen(auth.FieldFullName, input.FullName, 80)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.profileService.UpdateFullName(request.Context(), userID, input.FullName)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity, "Full name updated successfully")
}

/*
UpdateAvatar replaces the authenticated user's avatar image.

PATCH /api/v1/users/update-avatar (protected)

Request:
  - Files: avatar (required)

Response:
  - 200: Identity: Updated sanitized profile
  - 400: ErrInvalidJSON: Missing file
*/
func (handler *Handler) updateAvatar(writer http.ResponseWriter, request *http.Request) {
	handler.updateImage(writer, request, auth.FieldAvatar,
		handler.profileService.UpdateAvatar, "Avatar updated successfully")
}

/*
UpdateCoverImage replaces the authenticated user's cover image.

PATCH /api/v1/users/update-cover-image (protected)

Request:
  - Files: coverImage (required)

Response:
  - 200: Identity: Updated sanitized profile
  - 400: ErrInvalidJSON: Missing file
*/
func (handler *Handler) updateCoverImage(writer http.ResponseWriter, request *http.Request) {
	handler.updateImage(writer, request, auth.FieldCoverImage,
		handler.profileService.UpdateCoverImage, "Cover image updated successfully")
}

/*
Channel serves the public channel page for a username.

GET /api/v1/users/channel/{username} (optional auth)

Response:
  - 200: Channel: Public profile projection with an is_owner flag
  - 404: ErrNotFound: Unknown username
*/
func (handler *Handler) channel(writer http.ResponseWriter, request *http.Request) {
	channelUsername := requestutil.Param(request, "username")
	if channelUsername == "" {
		respond.Error(writer, request, validate.RequiredError(auth.FieldUsername, "Username is required"))
		return
	}

	viewerID := ""
	if identity := requestutil.Identity(request); identity != nil {
		viewerID = identity.ID
	}

	channel, err := handler.profileService.GetChannel(request.Context(), channelUsername, viewerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, channel, "Channel fetched successfully")
}

// updateImage is the shared single-file multipart path for both image routes.
func (handler *Handler) updateImage(
	writer http.ResponseWriter,
	request *http.Request,
	field string,
	apply func(ctx context.Context, userID string, file *auth.UploadFile) (*sec.Identity, error),
	message string,
) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, auth.MaxUploadBytes)

	if err := request.ParseMultipartForm(auth.MaxUploadBytes); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart form data"))
		return
	}

	file, header, err := request.FormFile(field)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(field, "Image file is required"))
		return
	}
	defer file.Close()

	identity, err := apply(request.Context(), userID, &auth.UploadFile{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity, message)
}
