package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"INVALID_RANGE", http.StatusBadRequest},
		{"INVALID_INPUT", http.StatusBadRequest},
		{"BACKEND_UNAVAILABLE", http.StatusServiceUnavailable},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeInvalidRange, http.StatusBadRequest},
		{ErrCodeBackendUnavailable, http.StatusServiceUnavailable},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeInvalidRange, NormalizeErrorCode("INVALID_RANGE"))
	assert.Equal(t, ErrCodeBackendUnavailable, NormalizeErrorCode("BACKEND_UNAVAILABLE"))
	assert.Equal(t, ErrCodeInvalidJSON, NormalizeErrorCode(ErrCodeInvalidJSON))
	assert.Equal(t, "CUSTOM", NormalizeErrorCode("CUSTOM"))
}

func TestErrorResponseJSON(t *testing.T) {
	body, err := json.Marshal(NewErrorResponseWithRequestID(ErrCodeNotFound, "Account not found", "req-1"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"success": false,
		"error": {"code": "ERR_NOT_FOUND", "message": "Account not found", "request_id": "req-1"}
	}`, string(body))
}

func TestSuccessResponseJSON(t *testing.T) {
	body, err := json.Marshal(NewSuccessResponse(map[string]int{"count": 2}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"success": true, "data": {"count": 2}}`, string(body))
}
