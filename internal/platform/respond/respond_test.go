// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/apperr"
)

func TestOK_Envelope(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	OK(recorder, map[string]string{"id": "u1"}, "Fetched")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Type"), "application/json")

	var envelope SuccessEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, http.StatusOK, envelope.StatusCode)
	assert.Equal(t, "Fetched", envelope.Message)
}

func TestError_AppError(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(recorder, request, apperr.NotFound("User"))

	assert.Equal(t, http.StatusNotFound, recorder.Code)

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, http.StatusNotFound, envelope.StatusCode)
	assert.Equal(t, "User not found", envelope.Message)
	assert.NotNil(t, envelope.Errors, "errors must serialize as [] rather than null")
}

// The errors field is always a JSON array, never null.
func TestError_ErrorsNeverNull(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(recorder, request, apperr.Unauthorized("Authentication required"))

	assert.Contains(t, recorder.Body.String(), `"errors":[]`)
}

func TestError_ValidationDetails(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(recorder, request, apperr.ValidationError("Validation failed",
		apperr.FieldError{Field: "email", Message: "Must be a valid email address"},
	))

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Len(t, envelope.Errors, 1)
	assert.Equal(t, "email", envelope.Errors[0].Field)
}

// A raw error is masked as a generic 500; its text never reaches the client.
func TestError_MasksInternalCause(t *testing.T) {
	t.Parallel()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(recorder, request, errors.New("pq: connection refused on 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "10.0.0.3")
	assert.Contains(t, recorder.Body.String(), "An unexpected error occurred")
}
