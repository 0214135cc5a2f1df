// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/constants"
	"github.com/vidora/vidora/internal/platform/ctxutil"
	"github.com/vidora/vidora/internal/platform/respond"
	"github.com/vidora/vidora/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the concrete
// [sec.TokenService], allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyAccessToken(tokenStr string) (*sec.AuthClaims, error)
}

// IdentityResolver resolves the user id embedded in a verified token into a
// sanitized identity. Password hash and refresh token are projected out of
// the result by contract.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID string) (*sec.Identity, error)
}

// Authenticate extracts and verifies the access token carried by a request,
// resolves it to an identity, and attaches it to the context. Requests that
// fail any step are rejected with 401.
//
// # Flow
//  1. Extract the token: 'accessToken' cookie first, then
//     'Authorization: Bearer <token>' header. Absent token rejects.
//  2. Verify signature and expiry against the access secret.
//  3. Resolve the embedded user id to an identity; unknown user rejects.
//  4. Inject [*sec.Identity] into the request context for downstream use.
//
// Rejection messages are deliberately generic: clients cannot distinguish
// expired from malformed tokens or unknown users.
func Authenticate(verifier TokenVerifier, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity, err := resolveRequestIdentity(request, verifier, resolver)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate performs the same steps as [Authenticate] but never
// rejects: on any failure the request proceeds anonymously.
//
// # Usage
//
// Mounted on endpoints whose response varies with the viewer (e.g. a public
// channel view that marks whether the viewer owns the channel) without
// requiring authentication.
func OptionalAuthenticate(verifier TokenVerifier, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity, err := resolveRequestIdentity(request, verifier, resolver)
			if err != nil {
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// resolveRequestIdentity runs the extract-verify-resolve pipeline shared by
// both middleware variants.
func resolveRequestIdentity(request *http.Request, verifier TokenVerifier, resolver IdentityResolver) (*sec.Identity, error) {

	// ── 1. Token Extraction ───────────────────────────────────────────────
	tokenStr := ExtractAccessToken(request)
	if tokenStr == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}

	// ── 2. Token Verification ─────────────────────────────────────────────
	claims, err := verifier.VerifyAccessToken(tokenStr)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	// ── 3. Identity Resolution ────────────────────────────────────────────
	identity, err := resolver.ResolveIdentity(request.Context(), claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	return identity, nil
}

// ExtractAccessToken pulls the raw access token from a request: the session
// cookie takes precedence, the bearer header is the fallback for non-browser
// clients. Returns "" if neither is present.
func ExtractAccessToken(request *http.Request) string {
	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := request.Header.Get(constants.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
