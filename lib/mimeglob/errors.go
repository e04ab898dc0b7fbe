package mimeglob

import (
	"fmt"
)

// ErrEmptyGlob et al describe why a rule was rejected.
var (
	ErrEmptyGlob       = ruleError("glob is empty")
	ErrBadMimeType     = ruleError("MIME type must look like media/subtype")
	ErrBadWeight       = ruleError("weight must be an integer from 0 to 100")
	ErrBadEncoding     = ruleError("line is not valid UTF-8")
	ErrMissingSep      = ruleError("expected [weight:]glob:type")
	ErrIllegalGlobChar = ruleError("glob contains a NUL byte")
)

// type ruleError {{{

type ruleError string

// Error fulfills the error interface.
func (err ruleError) Error() string {
	return string(err)
}

var _ error = ruleError("")

// }}}

// type InvalidGlobError {{{

// InvalidGlobError reports a rule whose pattern could not be accepted.
type InvalidGlobError struct {
	Glob string
	Err  error
}

// Error fulfills the error interface.
func (err InvalidGlobError) Error() string {
	return fmt.Sprintf("invalid glob %q: %v", err.Glob, err.Err)
}

// Unwrap returns the underlying cause of this error.
func (err InvalidGlobError) Unwrap() error {
	return err.Err
}

var _ error = InvalidGlobError{}

// }}}

// type ParseError {{{

// ParseError reports a skipped line of a globs file.
type ParseError struct {
	Path string
	Line int
	Err  error
}

// Error fulfills the error interface.
func (err ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", err.Path, err.Line, err.Err)
}

// Unwrap returns the underlying cause of this error.
func (err ParseError) Unwrap() error {
	return err.Err
}

var _ error = ParseError{}

// }}}

// type LoadError {{{

// LoadError reports a globs file that could not be read at all.
type LoadError struct {
	Path string
	Err  error
}

// Error fulfills the error interface.
func (err LoadError) Error() string {
	return fmt.Sprintf("failed to load globs file %q: %v", err.Path, err.Err)
}

// Unwrap returns the underlying cause of this error.
func (err LoadError) Unwrap() error {
	return err.Err
}

var _ error = LoadError{}

// }}}
