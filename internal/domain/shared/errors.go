package shared

// DomainError is an error carrying a stable machine-readable code. The HTTP
// layer maps codes to status codes; the Message is safe to show to API
// consumers.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches two domain errors by code, so a reconstructed error compares
// equal to its sentinel under errors.Is even when the message differs.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a domain error with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Sentinel errors for conditions every repository and service shares.
// Operation-specific codes ("NUMBER_EXHAUSTED", "DUPLICATE_SUBMISSION") are
// constructed at the call site instead.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")

	// ErrSourceUnavailable reports that one of the ledger's source
	// histories could not be fetched. Statement requests fail with it
	// rather than rendering a partial statement.
	ErrSourceUnavailable = NewDomainError("SOURCE_UNAVAILABLE", "A required data source is unavailable")
)
