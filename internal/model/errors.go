package model

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error so callers can branch on failure
// mode without parsing messages.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindInvalidInput     Kind = "invalid_input"
	KindDurability       Kind = "durability"
	KindIndexCorruption  Kind = "index_corruption"
	KindCapacity         Kind = "capacity"
	KindLossyDecompress  Kind = "lossy_decompress"
	KindUnavailable      Kind = "unavailable"
	KindCancelled        Kind = "cancelled"
)

// Error is the engine's typed error. Wrap lower-level causes with
// NewError so callers can recover the Kind via errors.As.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError constructs an *Error of the given kind.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is implements errors.Is matching by Kind, so errors.Is(err,
// model.NewError(model.KindNotFound, "", nil)) works regardless of
// message/cause.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindOf extracts the Kind from err, returning "" if err is not (or
// does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
