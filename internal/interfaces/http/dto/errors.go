package dto

import (
	"net/http"

	"github.com/docflow/backend/internal/domain/shared"
)

// Transport-level error codes for failures that never reach the domain
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// State machine violations and optimistic lock failures are conflicts;
// business rule violations on otherwise well-formed requests are 422.
var errorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:               http.StatusNotFound,
	shared.CodeAlreadyExists:          http.StatusConflict,
	shared.CodeInvalidInput:           http.StatusBadRequest,
	shared.CodeInvalidTransition:      http.StatusConflict,
	shared.CodeConcurrentModification: http.StatusConflict,
	shared.CodeValidationError:        http.StatusUnprocessableEntity,
	shared.CodeInvalidLineInput:       http.StatusUnprocessableEntity,
	shared.CodeDeleteNotAllowed:       http.StatusConflict,
	shared.CodeCancelNotAllowed:       http.StatusConflict,
	shared.CodeNumberingExhausted:     http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeInternal:     http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
