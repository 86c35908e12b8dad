// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes code generation errors.
type ErrorKind uint8

const (
	// ErrInvalidConfig indicates a backend configuration that cannot be used.
	// It is raised when the emitter is constructed, before any generation.
	ErrInvalidConfig ErrorKind = iota

	// ErrUnsupportedStatement indicates a statement kind with no lowering rule.
	ErrUnsupportedStatement

	// ErrUnsupportedExpression indicates an expression kind with no lowering rule.
	ErrUnsupportedExpression

	// ErrUnsupportedType indicates a type descriptor the backend cannot map.
	ErrUnsupportedType

	// ErrInternal indicates an inconsistency inside the generator, such as a
	// reverse BFS without its forward phase.
	ErrInternal

	// ErrIO indicates a failure while writing an output artifact.
	ErrIO
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrUnsupportedStatement:
		return "UnsupportedStatement"
	case ErrUnsupportedExpression:
		return "UnsupportedExpression"
	case ErrUnsupportedType:
		return "UnsupportedType"
	case ErrInternal:
		return "InternalError"
	case ErrIO:
		return "IOError"
	default:
		return "Unknown"
	}
}

// Error is a code generation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Function is the DSL function being lowered, if any.
	Function string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("codegen %s in %s: %s", e.Kind, e.Function, e.Message)
	}
	return fmt.Sprintf("codegen %s: %s", e.Kind, e.Message)
}

// NewError creates a new error without function context.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a new error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is (or wraps) a codegen error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var cgErr *Error
	if errors.As(err, &cgErr) {
		return cgErr.Kind == kind
	}
	return false
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool {
	return IsKind(err, ErrInvalidConfig)
}

// IsInternal reports whether err is a generator defect rather than a
// problem with the input program.
func IsInternal(err error) bool {
	return IsKind(err, ErrInternal) ||
		IsKind(err, ErrUnsupportedStatement) ||
		IsKind(err, ErrUnsupportedExpression) ||
		IsKind(err, ErrUnsupportedType)
}
