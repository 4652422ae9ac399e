package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoRemote     = errors.New("no git remote configured")
	ErrNoMatch      = errors.New("remote url is not of the form <user>@<host>:<owner>/<repo>.git")
	ErrDetachedHead = errors.New("HEAD is detached, check out a branch")
	ErrRefNotFound  = errors.New("remote branch not found, push it first")
)

// ConnectionError covers transport failures and bodies that are not JSON.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ShapeMismatchError reports a response that lacks a field the mapper needs.
// Pending marks a field that is present but null, which is the usual state
// of last_pipeline until CI has created the pipeline for a new push.
// Message carries the server's own text when the body was an error document.
type ShapeMismatchError struct {
	Field   string
	Pending bool
	Message string
	Err     error
}

func (e *ShapeMismatchError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("unexpected response shape: %s missing, server said %q", e.Field, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("unexpected response shape at %s: %v", e.Field, e.Err)
	case e.Pending:
		return fmt.Sprintf("unexpected response shape: %s is null", e.Field)
	}
	return fmt.Sprintf("unexpected response shape: %s missing", e.Field)
}

func (e *ShapeMismatchError) Unwrap() error { return e.Err }

type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureIdentity   FailureKind = "identity"
	FailureConnection FailureKind = "connection"
	FailureShape      FailureKind = "shape"
	FailureUnknown    FailureKind = "unknown"
)

func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	var ce *ConnectionError
	var se *ShapeMismatchError

	switch {
	case errors.As(err, &ce):
		return FailureConnection
	case errors.As(err, &se):
		return FailureShape
	case errors.Is(err, ErrNoRemote), errors.Is(err, ErrNoMatch),
		errors.Is(err, ErrDetachedHead), errors.Is(err, ErrRefNotFound):
		return FailureIdentity
	default:
		return FailureUnknown
	}
}
