package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrQuotaExceeded         = errors.New("quota exceeded")
	ErrValidation            = errors.New("validation failed")
	ErrInvalidConcepts       = errors.New("invalid concepts response")
	ErrImageGenerationFailed = errors.New("image generation failed")
	ErrUpstreamTimeout       = errors.New("upstream timeout")
	ErrNotConfigured         = errors.New("not configured")
	ErrProviderFailure       = errors.New("provider failure")
	ErrInvalidPlan           = errors.New("invalid plan")
)

// TimeoutError reports an external call that exceeded its budget. Message is
// the client-facing description, e.g. "Concept generation timed out".
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string { return e.Message }

func (e *TimeoutError) Is(target error) bool { return target == ErrUpstreamTimeout }

// ValidationError names the request field that was missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing %s", e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
