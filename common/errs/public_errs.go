package errs

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/withstack"
)

// PublicError is an error that, when caught by error handler, should return a user-friendly error response to the user.
type PublicError struct {
	err     error
	message string
	code    string // code is optional, it can be used to identify the error type
}

func (p PublicError) Error() string {
	return p.err.Error()
}

func (p PublicError) Message() string {
	return p.message
}

func (p PublicError) Code() string {
	return p.code
}

func (p PublicError) Unwrap() error {
	return p.err
}

func NewPublicError(message string) error {
	return withstack.WithStackDepth(&PublicError{err: errors.New(message), message: message}, 1)
}

// NewPublicErrorf wraps the given kind so errors.Is(err, kind) still holds and the message is exposed as is.
func NewPublicErrorf(kind ErrorKind, format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	return withstack.WithStackDepth(&PublicError{err: errors.Wrap(kind, message), message: message, code: string(kind)}, 1)
}

func WithPublicMessage(err error, prefix string) error {
	if err == nil {
		return nil
	}
	return withstack.WithStackDepth(&PublicError{err: err, message: publicMessage(err, prefix)}, 1)
}

func WithPublicMessageCode(err error, prefix string, code string) error {
	if err == nil {
		return nil
	}
	return withstack.WithStackDepth(&PublicError{err: err, message: publicMessage(err, prefix), code: code}, 1)
}

func publicMessage(err error, prefix string) string {
	if prefix == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s: %s", prefix, err.Error())
}

// KindOf returns the distribution error kind carried by err, or an empty kind.
func KindOf(err error) ErrorKind {
	for _, kind := range []ErrorKind{InputError, StateConflict, NotYetEligible, ProofError, Unauthorized, NotFound, InvalidArgument} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ""
}
