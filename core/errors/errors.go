// Package errors provides standardized error types and helpers for the Lingonberry codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrUnexpectedEOF indicates the input buffer ended mid-value
	ErrUnexpectedEOF = errors.New("unexpected end of input")
	// ErrImplausibleLength indicates a declared count larger than the remaining buffer could hold
	ErrImplausibleLength = errors.New("implausible length")
	// ErrUnsupportedVersion indicates a grammar file version this decoder does not handle
	ErrUnsupportedVersion = errors.New("unsupported version")
	// ErrMalformedAbstract indicates corruption in the abstract syntax section
	ErrMalformedAbstract = errors.New("malformed abstract syntax")
	// ErrMalformedConcrete indicates corruption in a concrete syntax block
	ErrMalformedConcrete = errors.New("malformed concrete syntax")
	// ErrUnknownLanguage indicates a language absent from the grammar
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrUnknownCategory indicates a category absent from the grammar
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownFunction indicates a function absent from the abstract syntax
	ErrUnknownFunction = errors.New("unknown function")
	// ErrMissingLinearization indicates a tree whose function has no rule in the target language
	ErrMissingLinearization = errors.New("missing linearization")
	// ErrTypeMismatch indicates a tree that violates the function table
	ErrTypeMismatch = errors.New("type mismatch")
)

// DecodeError represents a failure while decoding the binary grammar format.
// Offset is the byte position of the cursor when the failure was detected.
type DecodeError struct {
	Section string // Section being decoded (e.g., "header", "abstract", "concrete")
	Offset  int    // Byte offset in the input buffer
	Err     error  // Underlying error
}

func (e *DecodeError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("decode %s at offset %d: %v", e.Section, e.Offset, e.Err)
	}
	return fmt.Sprintf("decode at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// QueryError represents a lookup of a language, category, or function that
// does not exist in the grammar. It has no effect on grammar state.
type QueryError struct {
	Kind string // What was looked up ("language", "category", "function")
	Name string // The name that was not found
	Err  error  // Underlying sentinel
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Name)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// LinearizeError represents a linearization failure for a specific function.
type LinearizeError struct {
	Function string // Function with no rule in the target language
	Language string // Target language
	Err      error  // Underlying error, if any
}

func (e *LinearizeError) Error() string {
	return fmt.Sprintf("no linearization for %s in %s", e.Function, e.Language)
}

func (e *LinearizeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMissingLinearization
}

// Helper functions for creating common errors

// NewDecode creates a DecodeError wrapping err at the given section and offset.
func NewDecode(section string, offset int, err error) *DecodeError {
	return &DecodeError{
		Section: section,
		Offset:  offset,
		Err:     err,
	}
}

// NewUnknownLanguage creates a QueryError for a missing language.
func NewUnknownLanguage(name string) *QueryError {
	return &QueryError{Kind: "language", Name: name, Err: ErrUnknownLanguage}
}

// NewUnknownCategory creates a QueryError for a missing category.
func NewUnknownCategory(name string) *QueryError {
	return &QueryError{Kind: "category", Name: name, Err: ErrUnknownCategory}
}

// NewUnknownFunction creates a QueryError for a missing function.
func NewUnknownFunction(name string) *QueryError {
	return &QueryError{Kind: "function", Name: name, Err: ErrUnknownFunction}
}

// NewMissingLinearization creates a LinearizeError for fun in lang.
func NewMissingLinearization(fun, lang string) *LinearizeError {
	return &LinearizeError{Function: fun, Language: lang}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
