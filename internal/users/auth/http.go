// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/constants"
	requestutil "github.com/vidora/vidora/internal/platform/request"
	"github.com/vidora/vidora/internal/platform/respond"
	"github.com/vidora/vidora/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the HTTP delivery layer for the authentication lifecycle.
//
// # Scope
//
// The handler is a thin mediation layer between the web and [Service]:
//   - Protocol: RESTful JSON, with multipart bodies for media-bearing routes.
//   - Security: Orchestrates the dual session cookies (access + refresh).
//   - Verification: Enforces strict input validation before the service runs.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Register attaches the authentication routes to the shared users router.
//
// requireAuth is the strict authentication middleware; it guards the
// session-bound endpoints.
//
// # Endpoints
//   - POST /register        : Creates a new account (multipart, avatar required).
//   - POST /login           : Authenticates and establishes the session.
//   - POST /refresh-token   : Rotates the session.
//   - POST /logout          : Terminates the session (protected).
//   - POST /change-password : Updates credentials (protected).
func (handler *Handler) Register(router chi.Router, requireAuth func(http.Handler) http.Handler) {

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/change-password", handler.changePassword)
	})
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	CurrentPassword   string `json:"currentPassword"`
	NewPassword       string `json:"newPassword"`
	RetypeNewPassword string `json:"retypeNewPassword"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/users/register

Description: Accepts a multipart form with the textual fields plus a required
avatar file and an optional cover image. Validates input, checks identity
conflicts, and persists a new user record.

Request:
  - Form: username, email, fullName, password
  - Files: avatar (required), coverImage (optional)

Response:
  - 201: User: Created user profile (no session is established)
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {

	request.Body = http.MaxBytesReader(writer, request.Body, MaxUploadBytes)

	if err := request.ParseMultipartForm(MaxUploadBytes); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart form data"))
		return
	}

	usernameValue := request.FormValue(FieldUsername)
	emailValue := request.FormValue(FieldEmail)
	fullNameValue := request.FormValue(FieldFullName)
	passwordValue := request.FormValue(FieldPassword)

	validator := &validate.Validator{}
	validator.Required(FieldUsername, usernameValue).
		Username(FieldUsername, usernameValue).
		Required(FieldEmail, emailValue).
		Email(FieldEmail, emailValue).
		Required(FieldFullName, fullNameValue).
		MinLen(FieldFullName, fullNameValue, 3).
		Required(FieldPassword, passwordValue).
		Password(FieldPassword, passwordValue)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	avatarFile, avatarHeader, err := request.FormFile(FieldAvatar)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldAvatar, "Avatar file is required"))
		return
	}
	defer avatarFile.Close()

	input := RegisterInput{
		Username: usernameValue,
		Email:    emailValue,
		FullName: fullNameValue,
		Password: passwordValue,
		Avatar: &UploadFile{
			Reader:      avatarFile,
			Size:        avatarHeader.Size,
			ContentType: avatarHeader.Header.Get("Content-Type"),
		},
	}

	// Cover image is optional; a missing part is not an error.
	if coverFile, coverHeader, coverErr := request.FormFile(FieldCoverImage); coverErr == nil {
		defer coverFile.Close()
		input.CoverImage = &UploadFile{
			Reader:      coverFile,
			Size:        coverHeader.Size,
			ContentType: coverHeader.Header.Get("Content-Type"),
		}
	}

	user, err := handler.authService.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user, "User registered successfully")
}

/*
Login authenticates a user and establishes the dual-token session.

POST /api/v1/users/login

Description: Accepts username or email plus password. On success, both
session tokens are delivered twice: as httpOnly cookies and in the response
body (for non-browser clients).

Request:
  - Body: loginRequest (Username or Email, Password)

Response:
  - 200: Session: User profile and both tokens
  - 404: ErrNotFound: Unknown username/email
  - 401: ErrUnauthorized: Wrong password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	login := input.Username
	if login == "" {
		login = input.Email
	}

	validator := &validate.Validator{}
	validator.Custom(FieldUsername, login == "", "Username or email is required")
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Login:    login,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldUser:         session.User,
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	}, "User logged in successfully")
}

/*
Logout terminates the current user session.

POST /api/v1/users/logout (protected)

Description: Clears the stored refresh token slot and expires both session
cookies. Idempotent: repeating the call is still a success.

Response:
  - 200: Success: Session terminated
  - 401: ErrUnauthorized: Not authenticated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearSessionCookies(writer)

	respond.OK(writer, nil, "User logged out successfully")
}

/*
Refresh exchanges a valid refresh token for a brand-new token pair.

POST /api/v1/users/refresh-token

Description: Reads the refresh token from the cookie, falling back to the
JSON body for non-browser clients. A missing token is an authentication
failure. On success both cookies are re-issued.

Response:
  - 200: Session: New access and refresh tokens
  - 401: ErrUnauthorized: Missing, invalid, expired, or already-used token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {

	presented := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var input refreshRequest
		if err := requestutil.DecodeJSON(request, &input); err == nil {
			presented = input.RefreshToken
		}
	}

	if presented == "" {
		respond.Error(writer, request, apperr.Unauthorized("Refresh token is required"))
		return
	}

	session, err := handler.authService.Refresh(request.Context(), presented)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookies(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken:  session.AccessToken,
		FieldRefreshToken: session.RefreshToken,
	}, "Access token refreshed")
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/users/change-password (protected)

Description: Requires the current password, the new password, and a retyped
confirmation. The active session survives the change.

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword, RetypeNewPassword)

Response:
  - 200: Success: Password changed
  - 400: ErrInvalidJSON: Weak password or mismatch between new and retyped
  - 403: ErrForbidden: Current password is incorrect
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		Password(FieldNewPassword, input.NewPassword).
		Required(FieldRetypeNewPassword, input.RetypeNewPassword).
		Custom(FieldRetypeNewPassword, input.NewPassword != input.RetypeNewPassword, "New passwords do not match").
		Custom(FieldNewPassword, input.NewPassword != "" && input.NewPassword == input.CurrentPassword, "New password must differ from the current password")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		userID,
		input.CurrentPassword,
		input.NewPassword,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, nil, "Password changed successfully")
}

// # Cookie Management

// setSessionCookies installs both session cookies with expiries matching the
// token validity windows.
func setSessionCookies(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    session.AccessToken,
		Path:     constants.SessionCookiePath,
		Expires:  session.AccessTokenExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.SessionCookiePath,
		Expires:  session.RefreshExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearSessionCookies expires both session cookies on the client.
func clearSessionCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     constants.SessionCookiePath,
			MaxAge:   -1,
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
