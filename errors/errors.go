package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// DriverError is an error tagged with a [Kind], with a customizable message.
type DriverError interface {
	error
	Kind() Kind
	Unwrap() error
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
}

type driverError struct {
	kind          Kind
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e driverError) Error() string {
	if e.message != "" {
		return e.message
	}
	return StrError(e.kind)
}

func (e driverError) Kind() Kind {
	return e.kind
}

func (e driverError) Unwrap() error {
	return e.originalError
}

// Is reports a match for any [DriverError] of the same kind, so decorated errors
// still compare equal to the package sentinels.
func (e driverError) Is(target error) bool {
	other, ok := target.(DriverError)
	return ok && other.Kind() == e.kind
}

func (e driverError) WithMessage(message string) DriverError {
	return driverError{
		kind:          e.kind,
		message:       fmt.Sprintf("%s: %s", e.Error(), message),
		originalError: e.originalError,
	}
}

// Wrap returns a copy of the error with `err` attached as a cause. If the error
// already has a cause, both are kept.
func (e driverError) Wrap(err error) DriverError {
	var cause error = err
	if e.originalError != nil {
		cause = multierror.Append(e.originalError, err)
	}
	return driverError{
		kind:          e.kind,
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: cause,
	}
}

// New creates a new [DriverError] with the default message for its kind.
func New(kind Kind) DriverError {
	return driverError{
		kind:    kind,
		message: StrError(kind),
	}
}

func NewFromError(kind Kind, originalError error) DriverError {
	return New(kind).Wrap(originalError)
}

// NewWithMessage creates a new DriverError of the given kind with a custom message
// appended to the default one.
func NewWithMessage(kind Kind, message string) DriverError {
	return New(kind).WithMessage(message)
}

// KindOf returns the kind of the first [DriverError] in err's chain, or KindOK
// if there is none.
func KindOf(err error) Kind {
	var driverErr DriverError
	if stderrors.As(err, &driverErr) {
		return driverErr.Kind()
	}
	return KindOK
}
