package core

import (
	"errors"
	"fmt"
)

// Kind sentinels. Use errors.Is(err, ErrLabelMapping) and friends to classify
// any error returned by the pipeline.
var (
	ErrConfig             = errors.New("config error")
	ErrUpstreamValidation = errors.New("upstream validation failed")
	ErrLabelMapping       = errors.New("label mapping error")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrArtifactCorrupt    = errors.New("artifact corrupt")
	ErrShapeMismatch      = errors.New("shape mismatch")
	ErrInvalidInput       = errors.New("invalid input")
)

// Error carries the originating component and operation together with the
// underlying cause.
type Error struct {
	Kind      error
	Component string
	Op        string
	Err       error
}

// NewError builds an Error of the given kind.
func NewError(kind error, component, op string, err error) *Error {
	return &Error{Kind: kind, Component: component, Op: op, Err: err}
}

// Errorf builds an Error whose cause is a formatted message.
func Errorf(kind error, component, op, format string, args ...interface{}) *Error {
	return NewError(kind, component, op, fmt.Errorf(format, args...))
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Component, e.Op)
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the first taxonomy sentinel matched by err, or nil.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrConfig,
		ErrUpstreamValidation,
		ErrLabelMapping,
		ErrArtifactNotFound,
		ErrArtifactCorrupt,
		ErrShapeMismatch,
		ErrInvalidInput,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
