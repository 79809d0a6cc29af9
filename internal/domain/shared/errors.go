package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared across the document engine. Every rejected operation
// carries exactly one of these; the document is always left in its prior
// committed state.
const (
	CodeNotFound               = "NOT_FOUND"
	CodeAlreadyExists          = "ALREADY_EXISTS"
	CodeInvalidInput           = "INVALID_INPUT"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeValidationError        = "VALIDATION_ERROR"
	CodeInvalidLineInput       = "INVALID_LINE_INPUT"
	CodeDeleteNotAllowed       = "DELETE_NOT_ALLOWED"
	CodeCancelNotAllowed       = "CANCEL_NOT_ALLOWED"
	CodeNumberingExhausted     = "NUMBERING_EXHAUSTED"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
)

// Common domain errors
var (
	ErrNotFound = NewDomainError(CodeNotFound, "Resource not found")

	ErrAlreadyExists = NewDomainError(CodeAlreadyExists, "Resource already exists")

	ErrInvalidInput = NewDomainError(CodeInvalidInput, "Invalid input provided")

	// ErrConcurrencyConflict is transient: the caller should re-read the
	// document and retry the whole operation.
	ErrConcurrencyConflict = NewDomainError(CodeConcurrentModification, "Resource was modified by another process")
)
