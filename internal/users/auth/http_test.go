// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package auth

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/constants"
	"github.com/vidora/vidora/internal/platform/middleware"
	"github.com/vidora/vidora/internal/platform/sec"
)

// newTestRouter wires a real service (in-memory fakes, real token service)
// behind the real authentication middleware.
func newTestRouter(t *testing.T) (*chi.Mux, *serviceFixture) {
	t.Helper()

	fixture := newServiceFixture(t)
	handler := NewHandler(fixture.service)

	router := chi.NewRouter()
	router.Route("/api/v1/users", func(users chi.Router) {
		handler.Register(users, middleware.Authenticate(fixture.tokens, fixture.service))
	})

	return router, fixture
}

// multipartRegisterBody builds the registration form with an avatar part.
func multipartRegisterBody(t *testing.T, fields map[string]string, withAvatar bool) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	for name, value := range fields {
		require.NoError(t, form.WriteField(name, value))
	}

	if withAvatar {
		part, err := form.CreateFormFile(FieldAvatar, "avatar.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, form.Close())
	return body, form.FormDataContentType()
}

func registerFields(username string) map[string]string {
	return map[string]string{
		FieldUsername: username,
		FieldEmail:    username + "@example.com",
		FieldFullName: "Test " + username,
		FieldPassword: "Abcdef1!",
	}
}

func doRegister(t *testing.T, router *chi.Mux, username string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartRegisterBody(t, registerFields(username), true)
	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	request.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func doLogin(t *testing.T, router *chi.Mux, login, password string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		FieldUsername: login,
		FieldPassword: password,
	})
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

// sessionCookies extracts both session cookies from a response.
func sessionCookies(t *testing.T, recorder *httptest.ResponseRecorder) (access, refresh *http.Cookie) {
	t.Helper()
	for _, cookie := range recorder.Result().Cookies() {
		switch cookie.Name {
		case constants.AccessTokenCookieName:
			access = cookie
		case constants.RefreshTokenCookieName:
			refresh = cookie
		}
	}
	return access, refresh
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	envelope := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

// # Registration

func TestHTTP_Register_Created(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	recorder := doRegister(t, router, "alice")

	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, true, envelope["success"])

	data := envelope["data"].(map[string]any)
	assert.Equal(t, "alice", data["username"])
	assert.NotContains(t, recorder.Body.String(), "passwordhash")
	assert.NotContains(t, recorder.Body.String(), "Abcdef1!")
}

func TestHTTP_Register_MissingAvatar(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	body, contentType := multipartRegisterBody(t, registerFields("bob"), false)
	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	request.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHTTP_Register_ValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"short username", func(f map[string]string) { f[FieldUsername] = "ab" }},
		{"username outside alphabet", func(f map[string]string) { f[FieldUsername] = "ali ce!" }},
		{"bad email", func(f map[string]string) { f[FieldEmail] = "not-an-email" }},
		{"weak password", func(f map[string]string) { f[FieldPassword] = "weak" }},
		{"missing full name", func(f map[string]string) { delete(f, FieldFullName) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newTestRouter(t)
			fields := registerFields("carol")
			tc.mutate(fields)

			body, contentType := multipartRegisterBody(t, fields, true)
			request := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
			request.Header.Set("Content-Type", contentType)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)

			envelope := decodeEnvelope(t, recorder)
			assert.Equal(t, false, envelope["success"])
			assert.NotEmpty(t, envelope["errors"])
		})
	}
}

func TestHTTP_Register_DuplicateConflict(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRegister(t, router, "dave").Code)

	recorder := doRegister(t, router, "dave")
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

// # Login & Session Delivery

func TestHTTP_Login_SetsBothCookies(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRegister(t, router, "erin").Code)

	recorder := doLogin(t, router, "erin", "Abcdef1!")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	access, refresh := sessionCookies(t, recorder)
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	for _, cookie := range []*http.Cookie{access, refresh} {
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		assert.NotEmpty(t, cookie.Value)
	}

	// Dual delivery: tokens also appear in the body for non-browser clients.
	data := decodeEnvelope(t, recorder)["data"].(map[string]any)
	assert.Equal(t, access.Value, data[FieldAccessToken])
	assert.Equal(t, refresh.Value, data[FieldRefreshToken])
}

func TestHTTP_Login_UnknownUser(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	recorder := doLogin(t, router, "nobody", "Abcdef1!")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHTTP_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRegister(t, router, "frank").Code)

	recorder := doLogin(t, router, "frank", "Wrong$Pass1")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

// # Refresh Rotation

func TestHTTP_Refresh_FullRotationScenario(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRegister(t, router, "grace").Code)

	loginRecorder := doLogin(t, router, "grace", "Abcdef1!")
	require.Equal(t, http.StatusOK, loginRecorder.Code)
	_, refreshCookie := sessionCookies(t, loginRecorder)
	require.NotNil(t, refreshCookie)

	// First exchange succeeds and re-issues both cookies.
	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	request.AddCookie(refreshCookie)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	newAccess, newRefresh := sessionCookies(t, recorder)
	require.NotNil(t, newAccess)
	require.NotNil(t, newRefresh)
	assert.NotEqual(t, refreshCookie.Value, newRefresh.Value)

	// Replaying the original token must now fail with 401.
	replay := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	replay.AddCookie(refreshCookie)
	replayRecorder := httptest.NewRecorder()
	router.ServeHTTP(replayRecorder, replay)

	assert.Equal(t, http.StatusUnauthorized, replayRecorder.Code)
}

func TestHTTP_Refresh_BodyFallback(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRegister(t, router, "heidi").Code)

	loginRecorder := doLogin(t, router, "heidi", "Abcdef1!")
	_, refreshCookie := sessionCookies(t, loginRecorder)
	require.NotNil(t, refreshCookie)

	payload, err := json.Marshal(map[string]string{FieldRefreshToken: refreshCookie.Value})
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
}

func TestHTTP_Refresh_MissingToken(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", strings.NewReader("{}"))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

// # Protected Routes

func TestHTTP_Logout_ClearsCookies(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRegister(t, router, "ivan").Code)

	loginRecorder := doLogin(t, router, "ivan", "Abcdef1!")
	accessCookie, refreshCookie := sessionCookies(t, loginRecorder)
	require.NotNil(t, accessCookie)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	request.AddCookie(accessCookie)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	clearedAccess, clearedRefresh := sessionCookies(t, recorder)
	require.NotNil(t, clearedAccess)
	require.NotNil(t, clearedRefresh)
	assert.Empty(t, clearedAccess.Value)
	assert.Empty(t, clearedRefresh.Value)
	assert.Negative(t, clearedAccess.MaxAge)

	// The old refresh token is dead after logout.
	refreshRequest := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	refreshRequest.AddCookie(refreshCookie)
	refreshRecorder := httptest.NewRecorder()
	router.ServeHTTP(refreshRecorder, refreshRequest)
	assert.Equal(t, http.StatusUnauthorized, refreshRecorder.Code)
}

func TestHTTP_Logout_RequiresAuth(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHTTP_ChangePassword(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRegister(t, router, "judy").Code)

	loginRecorder := doLogin(t, router, "judy", "Abcdef1!")
	accessCookie, _ := sessionCookies(t, loginRecorder)
	require.NotNil(t, accessCookie)

	send := func(payload map[string]string) *httptest.ResponseRecorder {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		request := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", bytes.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
		request.AddCookie(accessCookie)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder
	}

	// Retype mismatch is a validation failure.
	recorder := send(map[string]string{
		FieldCurrentPassword:   "Abcdef1!",
		FieldNewPassword:       "NewPass1!",
		FieldRetypeNewPassword: "Different1!",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	// Wrong current password is forbidden.
	recorder = send(map[string]string{
		FieldCurrentPassword:   "Wrong$Pass1",
		FieldNewPassword:       "NewPass1!",
		FieldRetypeNewPassword: "NewPass1!",
	})
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// Valid change succeeds and the old password stops working.
	recorder = send(map[string]string{
		FieldCurrentPassword:   "Abcdef1!",
		FieldNewPassword:       "NewPass1!",
		FieldRetypeNewPassword: "NewPass1!",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	assert.Equal(t, http.StatusUnauthorized, doLogin(t, router, "judy", "Abcdef1!").Code)
	assert.Equal(t, http.StatusOK, doLogin(t, router, "judy", "NewPass1!").Code)
}

// Cookie expiries track the configured token validity windows.
func TestHTTP_Login_CookieExpiries(t *testing.T) {
	t.Parallel()

	router, fixture := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doRegister(t, router, "kim").Code)

	before := time.Now()
	recorder := doLogin(t, router, "kim", "Abcdef1!")
	require.Equal(t, http.StatusOK, recorder.Code)

	access, refresh := sessionCookies(t, recorder)
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	assert.WithinDuration(t, before.Add(fixture.tokens.AccessTTL()), access.Expires, 5*time.Second)
	assert.WithinDuration(t, before.Add(fixture.tokens.RefreshTTL()), refresh.Expires, 5*time.Second)
}

// Identity from the access token is resolvable by the middleware stack.
var _ middleware.IdentityResolver = (*Service)(nil)
var _ middleware.TokenVerifier = (*sec.TokenService)(nil)
var _ TokenProvider = (*sec.TokenService)(nil)
