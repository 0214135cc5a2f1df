// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces defined at the point of use.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidora/vidora/pkg/uuid"
)

// AuthClaims represents the payload embedded inside a signed token.
//
// Access and refresh tokens share the same claim shape but are signed with
// distinct secrets, so a leaked secret of one class can never forge the other.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID   string `json:"uid"`
	Username string `json:"unm,omitempty"`
}

// TokenService issues and verifies HMAC-signed access and refresh tokens.
//
// # Dual secrets
//
// The access secret and refresh secret are independent, operator-supplied
// values. Verification of a token class only ever uses that class's secret,
// which means an access token can never pass as a refresh token or vice versa.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	method        *jwt.SigningMethodHMAC
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewTokenService creates a TokenService from operator configuration.
//
// # Parameters
//   - accessSecret / refreshSecret: Independent signing secrets. Both required.
//   - algorithm: One of "HS256", "HS384", "HS512".
//   - issuer: Standard 'iss' claim value.
//   - accessTTL / refreshTTL: Validity windows per token class.
func NewTokenService(accessSecret, refreshSecret, algorithm, issuer string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("sec: access and refresh token secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("sec: access and refresh token secrets must differ")
	}

	var method *jwt.SigningMethodHMAC
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("sec: unsupported signing algorithm %q", algorithm)
	}

	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		method:        method,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
	}, nil
}

// AccessTTL returns the configured access token validity window.
func (service *TokenService) AccessTTL() time.Duration { return service.accessTTL }

// RefreshTTL returns the configured refresh token validity window.
func (service *TokenService) RefreshTTL() time.Duration { return service.refreshTTL }

// IssueAccessToken creates a short-lived signed access token for a user.
func (service *TokenService) IssueAccessToken(userID, username string) (string, error) {
	return service.issue(service.accessSecret, service.accessTTL, userID, username)
}

// IssueRefreshToken creates a long-lived signed refresh token for a user.
//
// Refresh tokens carry only the user ID; they are exchanged, never used to
// authorize individual requests.
func (service *TokenService) IssueRefreshToken(userID string) (string, error) {
	return service.issue(service.refreshSecret, service.refreshTTL, userID, "")
}

// VerifyAccessToken checks the signature and validity of an access token string.
func (service *TokenService) VerifyAccessToken(tokenString string) (*AuthClaims, error) {
	return service.verify(tokenString, service.accessSecret)
}

// VerifyRefreshToken checks the signature and validity of a refresh token string.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*AuthClaims, error) {
	return service.verify(tokenString, service.refreshSecret)
}

// issue signs a fresh token with the given secret and time-to-live.
//
// Every token carries a unique 'jti'. Timestamps have second granularity, so
// without it two tokens minted for the same user within one second would be
// byte-identical and refresh rotation could hand back the token it just
// consumed.
func (service *TokenService) issue(secret []byte, timeToLive time.Duration, userID, username string) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID:   userID,
		Username: username,
	}

	token := jwt.NewWithClaims(service.method, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// verify parses a token string and validates its signature and expiry.
func (service *TokenService) verify(tokenString string, secret []byte) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
