package usecase

import "net/http"

const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeInvalidJSON = "INVALID_JSON"
	CodeRateLimited = "RATE_LIMITED"
	CodeInternal    = "INTERNAL_ERROR"
)

const MsgEmailRequired = "Email is required"

// DomainError is a client-facing failure detected before any lookup work begins.
type DomainError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewValidationDomainError(message string) *DomainError {
	return &DomainError{
		Code:       CodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}
