package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies publish failures so callers can decide how to react
// without string matching.
type ErrorKind string

const (
	// KindPrecondition: a required local field was missing before any
	// network call was made.
	KindPrecondition ErrorKind = "precondition_failed"
	// KindGeneration: the model returned empty or non-JSON text.
	KindGeneration ErrorKind = "generation_failed"
	// KindAuthorization: missing or rejected token.
	KindAuthorization ErrorKind = "authorization_rejected"
	// KindTransport: network failure reaching the model provider or the
	// video service.
	KindTransport ErrorKind = "transport_failed"
	// KindServiceRejected: the service accepted the request shape but
	// rejected the content, e.g. quota or an invalid category.
	KindServiceRejected ErrorKind = "service_rejected"
	// KindInvalidTransition: the controller was asked for a transition its
	// current state does not permit.
	KindInvalidTransition ErrorKind = "invalid_transition"
)

type PublishError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *PublishError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) error {
	return &PublishError{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, err error) error {
	return &PublishError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind carried by err, or "" when err is not a
// PublishError.
func KindOf(err error) ErrorKind {
	var perr *PublishError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}
