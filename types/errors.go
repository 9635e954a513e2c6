package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category is the error taxonomy from the translation's design: syntax and
// reference errors carry a file and line, recursion errors carry the first
// cycle member encountered, identity and internal errors are translation-
// wide.
type Category string

const (
	CategorySyntax    Category = "syntax"
	CategoryReference Category = "reference"
	CategoryRecursion Category = "recursion"
	CategoryIdentity  Category = "identity"
	CategoryInternal  Category = "internal"
)

// Diagnostic is the one error shape produced anywhere in the pipeline. Its
// Error() string is exactly the "<file>:<line>: <diagnostic>" format the
// CLI driver prints on a nonzero exit.
type Diagnostic struct {
	Category Category
	File     string
	Line     int
	Message  string
}

func (d *Diagnostic) Error() string {
	if d.File == "" {
		return d.Message
	}
	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Message)
}

func newDiagnostic(cat Category, file string, line int, format string, args ...any) error {
	return errors.WithStack(&Diagnostic{
		Category: cat,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// SyntaxError reports a malformed definition opener or an unrecognized
// line inside a definition.
func SyntaxError(file string, line int, format string, args ...any) error {
	return newDiagnostic(CategorySyntax, file, line, format, args...)
}

// ReferenceError reports an unknown base, unknown property type, or a
// qualifier used on a non-atomic type.
func ReferenceError(file string, line int, format string, args ...any) error {
	return newDiagnostic(CategoryReference, file, line, format, args...)
}

// RecursionError reports a struct containing itself by value or a class
// inheriting from itself, naming the first-encountered cycle member.
func RecursionError(file string, line int, format string, args ...any) error {
	return newDiagnostic(CategoryRecursion, file, line, format, args...)
}

// IdentityError reports a duplicate type name or a colliding class
// identifier.
func IdentityError(format string, args ...any) error {
	return newDiagnostic(CategoryIdentity, "", 0, format, args...)
}

// InternalError reports an unreachable case: a missing method during
// vtable construction, an unknown primitive during sizeof.
func InternalError(format string, args ...any) error {
	return newDiagnostic(CategoryInternal, "", 0, format, args...)
}

// AsDiagnostic unwraps err looking for the *Diagnostic this package
// produced, following github.com/pkg/errors' Cause chain.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	for err != nil {
		if d, ok := err.(*Diagnostic); ok {
			return d, true
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		err = cause.Cause()
	}
	return nil, false
}
