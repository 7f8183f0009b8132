package scheduler

import "fmt"

// ErrorKind tags a hard scheduler error, distinct from a per-demand
// UnfillableDemand warning which travels on the emitted Timetable
// instead of aborting generate.
type ErrorKind string

const (
	KindNotFound       ErrorKind = "NOT_FOUND"
	KindEmptyInput     ErrorKind = "EMPTY_INPUT"
	KindInvalidInput   ErrorKind = "INVALID_INPUT"
	KindInvalidShape   ErrorKind = "INVALID_SHAPE"
	KindAborted        ErrorKind = "ABORTED"
	KindInternal       ErrorKind = "INTERNAL"
)

// Error is a typed core error. Hard errors abort the entire generate
// call; no partial results are emitted when one is returned.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ErrNotFound reports a department that could not be loaded.
func ErrNotFound(message string) *Error { return newError(KindNotFound, message) }

// ErrEmptyInput reports a snapshot missing all subjects, teachers, or rooms.
func ErrEmptyInput(kind string) *Error {
	return newError(KindEmptyInput, fmt.Sprintf("snapshot has no %s", kind))
}

// ErrInvalidInput reports malformed department configuration.
func ErrInvalidInput(message string) *Error { return newError(KindInvalidInput, message) }

// ErrInvalidShape reports a subject whose demand can never be placed in
// any practical group of the department's shape.
func ErrInvalidShape(message string) *Error { return newError(KindInvalidShape, message) }

// ErrAborted reports cooperative host cancellation mid-run.
func ErrAborted() *Error { return newError(KindAborted, "generate aborted by host") }

// ErrInternal reports an invariant violation (a bug).
func ErrInternal(message string, err error) *Error {
	return wrapError(KindInternal, message, err)
}
