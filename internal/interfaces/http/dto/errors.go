package dto

import (
	"net/http"

	"github.com/erp/stockflow/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Domain error codes, one per shared.ErrorKind
const (
	ErrCodeValidation        = "ERR_VALIDATION"
	ErrCodeNotFound          = "ERR_NOT_FOUND"
	ErrCodeAlreadyProcessed  = "ERR_ALREADY_PROCESSED"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodePersistence       = "ERR_PERSISTENCE"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Idempotency error codes
const (
	// ErrCodeDuplicateRequest is returned when an Idempotency-Key was already used
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeAlreadyProcessed:  http.StatusConflict,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodePersistence:       http.StatusInternalServerError,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeDuplicateRequest: http.StatusConflict,
}

// kindCodes maps domain error kinds to API error codes
var kindCodes = map[shared.ErrorKind]string{
	shared.KindValidation:        ErrCodeValidation,
	shared.KindNotFound:          ErrCodeNotFound,
	shared.KindAlreadyProcessed:  ErrCodeAlreadyProcessed,
	shared.KindInsufficientStock: ErrCodeInsufficientStock,
	shared.KindPersistence:       ErrCodePersistence,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// CodeForKind returns the API error code of a domain error kind
func CodeForKind(kind shared.ErrorKind) string {
	if code, ok := kindCodes[kind]; ok {
		return code
	}
	return ErrCodeUnknown
}
