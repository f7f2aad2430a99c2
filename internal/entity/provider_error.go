package entity

import (
	"errors"
	"fmt"
	"net/http"
)

type ProviderFailure string

const (
	FailureNoMatch     ProviderFailure = "NO_MATCH"
	FailureTimeout     ProviderFailure = "PROVIDER_TIMEOUT"
	FailureUnavailable ProviderFailure = "PROVIDER_UNAVAILABLE"
	FailureUpstream    ProviderFailure = "PROVIDER_ERROR"
)

// ProviderError reports a failed lookup against an enrichment provider.
type ProviderError struct {
	Provider string
	Failure  ProviderFailure
	Cause    error
}

func NewProviderError(provider string, failure ProviderFailure, cause error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Failure:  failure,
		Cause:    cause,
	}
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s lookup failed (%s): %v", e.Provider, e.Failure, e.Cause)
	}
	return fmt.Sprintf("%s lookup failed (%s)", e.Provider, e.Failure)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// StatusCode is the HTTP status surfaced to the caller for this failure.
func (e *ProviderError) StatusCode() int {
	switch e.Failure {
	case FailureNoMatch:
		return http.StatusNotFound
	case FailureTimeout:
		return http.StatusGatewayTimeout
	case FailureUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// PublicMessage is safe to show to clients; it never includes the cause.
func (e *ProviderError) PublicMessage() string {
	switch e.Failure {
	case FailureNoMatch:
		return "No enrichment data found"
	case FailureTimeout:
		return "Enrichment provider timed out"
	case FailureUnavailable:
		return "Enrichment provider unavailable"
	default:
		return "Enrichment provider failed"
	}
}

func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
