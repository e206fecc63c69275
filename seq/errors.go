package seq

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage marks mistakes a caller can detect without the service.
	ErrUsage = errors.New("seq: invalid usage")

	// ErrOutOfRange is a usage error for a value outside its field's range.
	ErrOutOfRange = fmt.Errorf("%w: value out of range", ErrUsage)

	// ErrClosed is returned by every operation on a closed client.
	ErrClosed = errors.New("seq: client closed")

	// ErrIncompatibleClass means a registered decode class does not fit
	// the records it is asked to decode.
	ErrIncompatibleClass = errors.New("seq: event class not compatible with record")

	ErrNoDescriptor        = errors.New("seq: no file descriptor")
	ErrMultipleDescriptors = errors.New("seq: more than one file descriptor")
)

// RangeError reports a field value outside [Min, Max].
type RangeError struct {
	Field string
	Value int64
	Min   int64
	Max   int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("seq: '%s' must be %d-%d, got %d", e.Field, e.Min, e.Max, e.Value)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

func checkRange(field string, v, min, max int64) error {
	if v < min || v > max {
		return &RangeError{Field: field, Value: v, Min: min, Max: max}
	}
	return nil
}

// ServiceError wraps a failure reported by the sequencer service.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return "seq: " + e.Op + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error { return e.Err }

func serviceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Op: op, Err: err}
}

func usagef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUsage}, args...)...)
}
