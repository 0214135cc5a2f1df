// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package sec

// Identity is the sanitized view of an authenticated user that travels with
// a request.
//
// It is the projection attached to the request context by the authentication
// middleware: the password hash and the stored refresh token are never part
// of it, so downstream handlers cannot leak them by accident.
type Identity struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
}
