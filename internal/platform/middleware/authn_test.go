// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/constants"
	"github.com/vidora/vidora/internal/platform/ctxutil"
	"github.com/vidora/vidora/internal/platform/sec"
)

// fakeVerifier accepts exactly one token string and returns fixed claims.
type fakeVerifier struct {
	validToken string
	claims     *sec.AuthClaims
}

func (f *fakeVerifier) VerifyAccessToken(tokenStr string) (*sec.AuthClaims, error) {
	if tokenStr != f.validToken {
		return nil, errors.New("invalid token")
	}
	return f.claims, nil
}

// fakeResolver resolves a fixed set of user IDs.
type fakeResolver struct {
	identities map[string]*sec.Identity
}

func (f *fakeResolver) ResolveIdentity(_ context.Context, userID string) (*sec.Identity, error) {
	identity, ok := f.identities[userID]
	if !ok {
		return nil, errors.New("unknown user")
	}
	return identity, nil
}

func newAuthFixture() (*fakeVerifier, *fakeResolver) {
	verifier := &fakeVerifier{
		validToken: "good-token",
		claims:     &sec.AuthClaims{UserID: "user-1", Username: "alice"},
	}
	resolver := &fakeResolver{
		identities: map[string]*sec.Identity{
			"user-1": {ID: "user-1", Username: "alice", Email: "alice@example.com"},
		},
	}
	return verifier, resolver
}

// captureIdentity records the identity the middleware attached, if any.
func captureIdentity(captured **sec.Identity) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*captured = ctxutil.GetIdentity(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_CookieToken(t *testing.T) {
	t.Parallel()

	verifier, resolver := newAuthFixture()
	var captured *sec.Identity
	handler := Authenticate(verifier, resolver)(captureIdentity(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "good-token"})
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.ID)
	assert.Equal(t, "alice", captured.Username)
}

func TestAuthenticate_BearerFallback(t *testing.T) {
	t.Parallel()

	verifier, resolver := newAuthFixture()
	var captured *sec.Identity
	handler := Authenticate(verifier, resolver)(captureIdentity(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderAuthorization, "Bearer good-token")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.ID)
}

// The cookie wins when both carriers are present.
func TestAuthenticate_CookiePrecedence(t *testing.T) {
	t.Parallel()

	verifier, resolver := newAuthFixture()
	var captured *sec.Identity
	handler := Authenticate(verifier, resolver)(captureIdentity(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "good-token"})
	request.Header.Set(constants.HeaderAuthorization, "Bearer bad-token")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, captured)
}

func TestAuthenticate_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(*http.Request)
	}{
		{"missing token", func(*http.Request) {}},
		{"invalid token", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "bad-token"})
		}},
		{"malformed authorization header", func(r *http.Request) {
			r.Header.Set(constants.HeaderAuthorization, "good-token")
		}},
		{"wrong scheme", func(r *http.Request) {
			r.Header.Set(constants.HeaderAuthorization, "Basic good-token")
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			verifier, resolver := newAuthFixture()
			var captured *sec.Identity
			handler := Authenticate(verifier, resolver)(captureIdentity(&captured))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.prepare(request)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Nil(t, captured)
		})
	}
}

// A valid token for an account that no longer exists must be rejected with
// the same generic message as a bad token.
func TestAuthenticate_UnknownUser(t *testing.T) {
	t.Parallel()

	verifier, resolver := newAuthFixture()
	verifier.claims = &sec.AuthClaims{UserID: "ghost"}

	var captured *sec.Identity
	handler := Authenticate(verifier, resolver)(captureIdentity(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "good-token"})
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Nil(t, captured)
}

func TestOptionalAuthenticate_AnonymousPassThrough(t *testing.T) {
	t.Parallel()

	verifier, resolver := newAuthFixture()
	var captured *sec.Identity
	handler := OptionalAuthenticate(verifier, resolver)(captureIdentity(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, captured)
}

func TestOptionalAuthenticate_AttachesIdentityWhenPresent(t *testing.T) {
	t.Parallel()

	verifier, resolver := newAuthFixture()
	var captured *sec.Identity
	handler := OptionalAuthenticate(verifier, resolver)(captureIdentity(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "good-token"})
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.ID)
}

// An invalid token on an optional route degrades to anonymous instead of 401.
func TestOptionalAuthenticate_InvalidTokenDegrades(t *testing.T) {
	t.Parallel()

	verifier, resolver := newAuthFixture()
	var captured *sec.Identity
	handler := OptionalAuthenticate(verifier, resolver)(captureIdentity(&captured))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "bad-token"})
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, captured)
}

func TestExtractAccessToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prepare func(*http.Request)
		want    string
	}{
		{"no carriers", func(*http.Request) {}, ""},
		{"cookie only", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "tok-a"})
		}, "tok-a"},
		{"bearer only", func(r *http.Request) {
			r.Header.Set(constants.HeaderAuthorization, "Bearer tok-b")
		}, "tok-b"},
		{"bearer case-insensitive", func(r *http.Request) {
			r.Header.Set(constants.HeaderAuthorization, "bearer tok-c")
		}, "tok-c"},
		{"empty cookie falls back to header", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: ""})
			r.Header.Set(constants.HeaderAuthorization, "Bearer tok-d")
		}, "tok-d"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.prepare(request)
			assert.Equal(t, tc.want, ExtractAccessToken(request))
		})
	}
}
