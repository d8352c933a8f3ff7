package utils

import (
	"encoding/json"
	"net/http"

	"optysys-backend/pkg/apperrors"
)

// APIResponse is the standard JSON envelope for every endpoint
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError carries a stable code plus a human-readable message
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSONResponse writes a success envelope with the given status code
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// WriteSuccessResponse writes a 200 response
func WriteSuccessResponse(w http.ResponseWriter, data interface{}) {
	WriteJSONResponse(w, http.StatusOK, data)
}

// WriteCreatedResponse writes a 201 response
func WriteCreatedResponse(w http.ResponseWriter, data interface{}) {
	WriteJSONResponse(w, http.StatusCreated, data)
}

// WriteErrorResponse writes an error envelope with a generic code
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	WriteErrorResponseWithCode(w, statusCode, "ERROR", message)
}

// WriteErrorResponseWithCode writes an error envelope with an explicit code
func WriteErrorResponseWithCode(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// WriteAppErrorResponse maps an application error to its status class and
// writes the error envelope. Unknown errors collapse to a 500 without
// leaking internals.
func WriteAppErrorResponse(w http.ResponseWriter, err error) {
	statusCode := apperrors.StatusCode(err)
	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		message = "Internal server error"
	}
	WriteErrorResponseWithCode(w, statusCode, apperrors.Code(err), message)
}

// WriteBadRequestResponse writes a 400 error response
func WriteBadRequestResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

// WriteUnauthorizedResponse writes a 401 error response
func WriteUnauthorizedResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// WriteForbiddenResponse writes a 403 error response
func WriteForbiddenResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusForbidden, "FORBIDDEN", message)
}

// WriteNotFoundResponse writes a 404 error response
func WriteNotFoundResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusNotFound, "NOT_FOUND", message)
}

// WriteConflictResponse writes a 409 error response
func WriteConflictResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusConflict, "CONFLICT", message)
}

// WriteInternalServerErrorResponse writes a 500 error response
func WriteInternalServerErrorResponse(w http.ResponseWriter, message string) {
	WriteErrorResponseWithCode(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message)
}

// ParseJSONBody decodes a JSON request body into v
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
