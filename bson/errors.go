package bson

import "errors"

// Sentinel errors for the BSON value model. Higher layers (the mongo
// package's error taxonomy) wrap these with github.com/pkg/errors to add
// causal context; code that only cares about the kind of failure can still
// compare with errors.Is against these.
var (
	// ErrKindMismatch is returned when a typed accessor, document
	// operation, or array operation is used against a Value whose Type()
	// doesn't support it (e.g. Get on a scalar, ToInt on a string).
	ErrKindMismatch = errors.New("bson: kind mismatch")

	// ErrMissingKey is returned by Unmarshal when a required (non-
	// omitempty) struct field has no corresponding document key.
	ErrMissingKey = errors.New("bson: missing key")

	// ErrIndexOutOfRange is returned by Value.Index for an out-of-bounds
	// array index.
	ErrIndexOutOfRange = errors.New("bson: index out of range")

	errShortDoc          = errors.New("not enough bytes available to read value")
	errInvalidLength     = errors.New("document length doesn't match buffer length")
	errMissingTerminator = errors.New("document buffer missing null terminator")
)
