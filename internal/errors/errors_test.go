package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, CodeInvalidRequest, "bad filter")
	assert.Equal(t, "bad filter", err.Error())

	var target *APIError
	wrapped := errors.Join(errors.New("outer"), err)
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, CodeInvalidRequest, target.ErrorCode)
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, CodeInvalidRequest},
		{"validation", ErrValidationFailed, http.StatusBadRequest, CodeValidationFailed},
		{"not found", ErrNotFound, http.StatusNotFound, CodeNotFound},
		{"file not found", ErrFileNotFound, http.StatusNotFound, CodeFileNotFound},
		{"summary not found", ErrSummaryNotFound, http.StatusNotFound, CodeSummaryNotFound},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, CodeRateLimitExceeded},
		{"internal", ErrInternalServer, http.StatusInternalServerError, CodeInternal},
		{"dataset load", ErrDatasetLoadFailed, http.StatusBadGateway, CodeDatasetLoadFailed},
		{"unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable, CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestHelperConstructors(t *testing.T) {
	t.Run("invalid request carries cause", func(t *testing.T) {
		err := InvalidRequestWithError(errors.New("unexpected EOF"))
		assert.Equal(t, http.StatusBadRequest, err.StatusCode)
		assert.Equal(t, "unexpected EOF", err.Details)
	})

	t.Run("field validation", func(t *testing.T) {
		err := ErrValidation("summary", "unknown summary")
		assert.Equal(t, CodeValidationFailed, err.ErrorCode)
		assert.Equal(t, ValidationError{Field: "summary", Message: "unknown summary"}, err.Details)
	})

	t.Run("file not found names the file", func(t *testing.T) {
		err := FileNotFoundError("COA_MARS.xlsx")
		assert.Equal(t, http.StatusNotFound, err.StatusCode)
		assert.Contains(t, err.Message, "COA_MARS.xlsx")
		assert.Equal(t, "COA_MARS.xlsx", err.Details)
	})

	t.Run("dataset load keeps user message", func(t *testing.T) {
		err := DatasetLoadError("No rows found in file", "COA_UAE.xlsx")
		assert.Equal(t, http.StatusBadGateway, err.StatusCode)
		assert.Equal(t, "No rows found in file", err.Message)
		assert.Equal(t, map[string]string{"file": "COA_UAE.xlsx"}, err.Details)
	})

	t.Run("not found", func(t *testing.T) {
		err := NotFoundError("summary")
		assert.Equal(t, "summary not found", err.Message)
	})

	t.Run("multiple validation errors", func(t *testing.T) {
		err := NewValidationErrors([]ValidationError{{Field: "file", Message: "required"}})
		details, ok := err.Details.(ValidationErrors)
		require.True(t, ok)
		assert.Len(t, details.Errors, 1)
	})

	assert.Equal(t, http.StatusBadRequest, NewValidationError("x").StatusCode)
	assert.Equal(t, http.StatusInternalServerError, NewInternalError("x").StatusCode)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, FileNotFoundError("missing.xlsx"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, CodeFileNotFound, errBody["error_code"])
}

func TestAPIError_RenderSetsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/files/x", nil)

	require.NoError(t, render.Render(rec, req, ErrSummaryNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), CodeSummaryNotFound)
}
