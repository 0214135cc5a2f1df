// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/ctxutil"
	"github.com/vidora/vidora/internal/platform/sec"
	"github.com/vidora/vidora/internal/platform/validate"
)

// DecodeJSON reads the request body and decodes it into the target structure.
// Returns [validate.ErrInvalidJSON] if decoding fails.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Identity extracts the authenticated identity from the request context.
//
// Returns nil if the request is not authenticated.
func Identity(request *http.Request) *sec.Identity {
	return ctxutil.GetIdentity(request.Context())
}

// RequiredIdentity ensures the request is authenticated and returns the identity.
//
// Returns:
//   - *sec.Identity: The resolved identity
//   - error: apperr.Unauthorized if the request is not authenticated
func RequiredIdentity(request *http.Request) (*sec.Identity, error) {

	identity := ctxutil.GetIdentity(request.Context())

	if identity == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return identity, nil
}

// RequiredUserID returns the user ID of the currently logged-in user.
//
// Returns:
//   - string: User UUID
//   - error: apperr.Unauthorized if not authenticated
func RequiredUserID(request *http.Request) (string, error) {

	identity, err := RequiredIdentity(request)

	if err != nil {
		return "", err
	}

	return identity.ID, nil
}
