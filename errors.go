package mongo

import (
	"github.com/pkg/errors"
)

// Kind identifies a category of failure raised by this package. Callers
// compare against the sentinel values below with errors.Is; the wrapped
// causal chain (via github.com/pkg/errors) is preserved for logging.
type Kind struct {
	name string
}

func (k Kind) Error() string { return k.name }

var (
	// ErrCommunication covers socket failures, short reads, and disconnects.
	ErrCommunication = Kind{"communication error"}
	// ErrProtocol covers malformed replies and SCRAM signature mismatches.
	ErrProtocol = Kind{"protocol error"}
	// ErrConfig covers bad URI schemes and missing TLS when required.
	ErrConfig = Kind{"config error"}
	// ErrAuth covers rejected credentials.
	ErrAuth = Kind{"auth error"}
	// ErrNotFound covers an empty expected-one query.
	ErrNotFound = Kind{"not found"}
	// ErrOperationTimeout covers a server-side $maxTimeMS firing.
	ErrOperationTimeout = Kind{"operation timeout"}
	// ErrKindMismatch covers a BSON typed accessor used on the wrong kind.
	ErrKindMismatch = Kind{"kind mismatch"}
	// ErrMissingKey covers an object-mapper required field absent on decode.
	ErrMissingKey = Kind{"missing key"}
	// ErrInvalidState covers double-release and use of a closed cursor.
	ErrInvalidState = Kind{"invalid state"}
)

// wrap attaches kind to err's causal chain so errors.Is(result, kind)
// succeeds while the original error text and stack are retained for logs.
func wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&kindError{kind: kind, cause: err})
}

// wrapf builds a fresh kind error with a formatted message and no
// underlying cause, for failures that originate in this package rather
// than bubbling up from a lower layer.
func wrapf(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&kindError{kind: kind, cause: errors.Errorf(format, args...)})
}

type kindError struct {
	kind  Kind
	cause error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return e.kind.name + ": " + e.cause.Error()
	}
	return e.kind.name
}

func (e *kindError) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.kind == k
	}
	return false
}

func (e *kindError) Unwrap() error { return e.cause }
