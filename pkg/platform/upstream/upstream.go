// Package upstream classifies failures returned by marketplace backends.
// A backend either refuses a request with a message meant for the admin
// (RejectedError) or fails in transport with a plain error; stores treat
// both the same way and only differ in the text they show.
package upstream

import (
	"errors"

	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/sentinel"
)

// RejectedError is a well-formed collaborator reply that declined the
// request. Its Message is shown to the admin verbatim. Err optionally
// classifies the refusal with a sentinel.
type RejectedError struct {
	Message string
	Err     error
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "request rejected by backend"
	}
	return e.Message
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Rejected builds a RejectedError.
func Rejected(message string) error {
	return &RejectedError{Message: message}
}

// NotFound is a rejection for an entity the backend does not know.
func NotFound(message string) error {
	return &RejectedError{Message: message, Err: sentinel.ErrNotFound}
}

// InvalidState is a rejection for an entity in the wrong state.
func InvalidState(message string) error {
	return &RejectedError{Message: message, Err: sentinel.ErrInvalidState}
}

// CodeFor classifies a collaborator failure. Unclassified failures are
// reported as the backend being unavailable.
func CodeFor(err error) dErrors.Code {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.CodeNotFound
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.CodeConflict
	default:
		return dErrors.CodeUnavailable
	}
}

// FailureMessage picks the admin-facing text for a collaborator failure:
// the backend's own message when it sent one, else fallback.
func FailureMessage(err error, fallback string) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	return fallback
}
