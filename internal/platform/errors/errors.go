package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrNoSession         = errors.New("no analysis on record")
	ErrSuperseded        = errors.New("superseded by a newer request")
	ErrInvalidTransition = errors.New("invalid navigation")
	ErrNotAuthenticated  = errors.New("not authenticated")
)

// ServiceError is a non-2xx answer from the remote service. Detail holds the
// service's human-readable "detail" field and may be empty.
type ServiceError struct {
	Status int
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("service returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("service returned %d", e.Status)
}

// UserMessage picks the text shown to the user for a failed stage operation:
// the service detail verbatim when present, the precondition text for local
// input/session problems, and fallback otherwise.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && strings.TrimSpace(svcErr.Detail) != "" {
		return svcErr.Detail
	}
	if errors.Is(err, ErrNoSession) || errors.Is(err, ErrInvalidInput) {
		return err.Error()
	}
	return fallback
}
