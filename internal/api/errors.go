package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/fahimtalukdarakash/MobileComputingProject5G/internal/errors"
)

// ErrorCode represents standard API error codes.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates malformed or invalid request data.
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"

	// ErrCodeUnreachable indicates a device did not respond in time.
	ErrCodeUnreachable ErrorCode = "endpoint_unreachable"

	// ErrCodeRejected indicates a device refused a configuration step.
	ErrCodeRejected ErrorCode = "command_rejected"

	// ErrCodePartialApply indicates some steps of an operation failed.
	ErrCodePartialApply ErrorCode = "partial_apply"

	// ErrCodeInternalError indicates an internal server error.
	ErrCodeInternalError ErrorCode = "internal_error"
)

// APIError represents a structured API error response.
type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError for JSON responses.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WriteError writes an error response to the HTTP response writer.
func WriteError(w http.ResponseWriter, statusCode int, err APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err})
}

// WriteInvalidRequest writes a 400 Bad Request error.
func WriteInvalidRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, APIError{Code: ErrCodeInvalidRequest, Message: message})
}

// WriteInternalError writes a 500 Internal Server Error.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, APIError{Code: ErrCodeInternalError, Message: message})
}

// WriteDomainError maps a coded domain error to the matching HTTP response.
// Partial failures carry the operation result as details so the caller can
// see which steps failed.
func WriteDomainError(w http.ResponseWriter, err error, details interface{}) {
	switch {
	case apperrors.IsCode(err, apperrors.ErrCodeUnknownIdentifier):
		WriteError(w, http.StatusNotFound, APIError{Code: ErrCodeNotFound, Message: err.Error()})
	case apperrors.IsCode(err, apperrors.ErrCodeValidation):
		WriteError(w, http.StatusBadRequest, APIError{Code: ErrCodeInvalidRequest, Message: err.Error()})
	case apperrors.IsCode(err, apperrors.ErrCodeEndpointUnreachable):
		WriteError(w, http.StatusBadGateway, APIError{Code: ErrCodeUnreachable, Message: err.Error()})
	case apperrors.IsCode(err, apperrors.ErrCodeCommandRejected):
		WriteError(w, http.StatusConflict, APIError{Code: ErrCodeRejected, Message: err.Error()})
	case apperrors.IsCode(err, apperrors.ErrCodePartialApply):
		WriteError(w, http.StatusBadGateway, APIError{Code: ErrCodePartialApply, Message: err.Error(), Details: details})
	default:
		WriteInternalError(w, err.Error())
	}
}

// WriteJSON writes a 200 OK JSON response.
func WriteJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(payload)
}
