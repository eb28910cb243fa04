package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler_HandleError(t *testing.T) {
	handler := NewErrorHandler(slog.Default(), false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "column missing",
			err:        NewColumnMissingError("Role"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeColumnMissing,
		},
		{
			name:       "not found app error",
			err:        NewNotFoundError("report x.xlsx"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "field error",
			err:        NewFieldError("top", "must be an integer"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "context deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "wrapped cancellation wins",
			err:        NewExportError("deck interrupted", context.Canceled),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/leads/aggregate", nil)
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/leads/aggregate", body["instance"])
		})
	}
}

func TestErrorHandler_NilError(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()

	handler.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/x").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "abc", body["trace_id"])
	assert.Equal(t, "/x", body["instance"])
	_, hasDetail := body["detail"]
	assert.False(t, hasDetail)
}

func TestErrorHandler_ProblemExtensions(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	req := httptest.NewRequest(http.MethodPost, "/api/leads/roles", nil)

	problem := handler.ErrorToProblem(fmt.Errorf("roles: %w", NewColumnMissingError("Role")), req)
	assert.Equal(t, http.StatusUnprocessableEntity, problem.Status)
	assert.Equal(t, "COLUMN", problem.Extensions["error_type"])
	assert.Equal(t, map[string]interface{}{"column": "Role"}, problem.Extensions["context"])

	problem = handler.ErrorToProblem(errors.New("boom"), req)
	assert.NotContains(t, problem.Extensions, "error_type")
	assert.NotContains(t, problem.Detail, "boom", "internal messages stay in the logs")
}

func TestErrorHandler_RouterResponses(t *testing.T) {
	handler := NewErrorHandler(nil, false)

	tests := []struct {
		name       string
		serve      http.HandlerFunc
		wantStatus int
		wantType   string
	}{
		{"not found", handler.NotFound, http.StatusNotFound, TypeNotFound},
		{"method not allowed", handler.MethodNotAllowed, http.StatusMethodNotAllowed, TypeMethod},
		{"rate limited", handler.RateLimited, http.StatusTooManyRequests, TypeRateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.serve(rec, httptest.NewRequest(http.MethodDelete, "/api/reports", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Contains(t, body, "trace_id")
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, HTTPStatus(NewPermissionError("outside reports directory")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(NewParsingError("bad zip", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(NewConfigError("bad exporter", nil)))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestNewFieldError(t *testing.T) {
	err := NewFieldError("csv", "must be a boolean")
	assert.Equal(t, ErrTypeValidation, err.Type)
	assert.Equal(t, "csv: must be a boolean", err.Message)
	assert.Equal(t, "csv", err.Context["field"])
}
