package mimeutil

import (
	"fmt"
)

// ErrShortBuffer et al signal malformed binary input.
var (
	ErrShortBuffer = inputError("buffer too short")
	ErrBadWordSize = inputError("word size must be 0, 1, 2, or 4")
)

// ErrNotExist signals that something does not exist.
var ErrNotExist = inputError("does not exist")

// type inputError {{{

// inputError represents failure to parse an input.
type inputError string

// Error fulfills the error interface.
func (err inputError) Error() string {
	return string(err)
}

var _ error = inputError("")

// }}}

// type EnvVarLookupError {{{

// EnvVarLookupError represents failure to look up an environment variable.
type EnvVarLookupError struct {
	Var string
	Err error
}

// Error fulfills the error interface.
func (err EnvVarLookupError) Error() string {
	return fmt.Sprintf("failed to look up env var ${%s}: %v", err.Var, err.Err)
}

// Unwrap returns the underlying cause of this error.
func (err EnvVarLookupError) Unwrap() error {
	return err.Err
}

var _ error = EnvVarLookupError{}

// }}}

// type LookupHomeError {{{

// LookupHomeError represents failure to find a user's home directory.
type LookupHomeError struct {
	User string
	Err  error
}

// Error fulfills the error interface.
func (err LookupHomeError) Error() string {
	if err.User == "" {
		return fmt.Sprintf("failed to find home directory: %v", err.Err)
	}
	return fmt.Sprintf("failed to find home directory of user %q: %v", err.User, err.Err)
}

// Unwrap returns the underlying cause of this error.
func (err LookupHomeError) Unwrap() error {
	return err.Err
}

var _ error = LookupHomeError{}

// }}}

// type PathAbsError {{{

// PathAbsError represents failure to make a path absolute.
type PathAbsError struct {
	Path string
	Err  error
}

// Error fulfills the error interface.
func (err PathAbsError) Error() string {
	return fmt.Sprintf("failed to make path %q absolute: %v", err.Path, err.Err)
}

// Unwrap returns the underlying cause of this error.
func (err PathAbsError) Unwrap() error {
	return err.Err
}

var _ error = PathAbsError{}

// }}}
