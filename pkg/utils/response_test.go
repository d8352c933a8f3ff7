package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optysys-backend/pkg/apperrors"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteSuccessResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessResponse(rec, map[string]string{"detail": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]interface{}{"detail": "ok"}, resp.Data)
}

func TestWriteCreatedResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteCreatedResponse(rec, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decodeResponse(t, rec).Success)
}

func TestWriteErrorResponseWithCode(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorResponseWithCode(rec, http.StatusConflict, "CONFLICT", "name taken")

	assert.Equal(t, http.StatusConflict, rec.Code)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONFLICT", resp.Error.Code)
	assert.Equal(t, "name taken", resp.Error.Message)
}

func TestWriteAppErrorResponse(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "duplicate name maps to conflict",
			err:         apperrors.ErrDuplicateName,
			wantStatus:  http.StatusConflict,
			wantMessage: apperrors.ErrDuplicateName.Error(),
		},
		{
			name:        "not admin maps to forbidden",
			err:         apperrors.ErrNotAdmin,
			wantStatus:  http.StatusForbidden,
			wantMessage: apperrors.ErrNotAdmin.Error(),
		},
		{
			name:        "unavailable maps to 503",
			err:         apperrors.ErrUnavailable,
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: apperrors.ErrUnavailable.Error(),
		},
		{
			name:        "unknown error collapses to 500",
			err:         errors.New("driver detail that must not leak"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteAppErrorResponse(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"acme"}`))

	var body struct {
		Name string `json:"name"`
	}
	require.NoError(t, ParseJSONBody(req, &body))
	assert.Equal(t, "acme", body.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{broken`))
	assert.Error(t, ParseJSONBody(req, &body))
}
