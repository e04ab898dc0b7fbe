package mimemagic

import (
	"fmt"
)

// ErrBadHeader et al describe malformed magic input.
var (
	ErrBadHeader        = inputError("missing \"MIME-Magic\\0\\n\" header")
	ErrTruncated        = inputError("unexpected end of file")
	ErrBadSection       = inputError("malformed [priority:type] section header")
	ErrBadPriority      = inputError("priority must be an integer from 0 to 100")
	ErrBadMimeType      = inputError("MIME type must look like media/subtype")
	ErrBadIndent        = inputError("matchlet indent skips a level")
	ErrBadOffset        = inputError("malformed matchlet offset")
	ErrBadValue         = inputError("matchlet value must not be empty")
	ErrBadMask          = inputError("matchlet mask length differs from value length")
	ErrBadWordSize      = inputError("word size must be 0, 1, 2, or 4 and divide the value length")
	ErrBadRange         = inputError("malformed matchlet range length")
	ErrUnexpectedByte   = inputError("unexpected byte in matchlet")
	ErrEmptySection     = inputError("section has no matchlets")
	ErrNoMatchlets      = inputError("rule has no matchlets")
	ErrOffsetOutOfRange = inputError("matchlet offset out of range")
)

// type inputError {{{

type inputError string

// Error fulfills the error interface.
func (err inputError) Error() string {
	return string(err)
}

var _ error = inputError("")

// }}}

// type UnexpectedByteError {{{

// UnexpectedByteError records the byte found where ErrUnexpectedByte was
// raised.
type UnexpectedByteError struct {
	Byte byte
}

// Error fulfills the error interface.
func (err UnexpectedByteError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnexpectedByte, err.Byte)
}

// Unwrap returns ErrUnexpectedByte.
func (err UnexpectedByteError) Unwrap() error {
	return ErrUnexpectedByte
}

var _ error = UnexpectedByteError{}

// }}}

// type InvalidRuleError {{{

// InvalidRuleError reports a rule rejected by Matcher.AddRule.
type InvalidRuleError struct {
	Type string
	Err  error
}

// Error fulfills the error interface.
func (err InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid magic rule for %q: %v", err.Type, err.Err)
}

// Unwrap returns the underlying cause of this error.
func (err InvalidRuleError) Unwrap() error {
	return err.Err
}

var _ error = InvalidRuleError{}

// }}}

// type ParseError {{{

// ParseError reports a section of a magic file that was skipped.
type ParseError struct {
	Path    string
	Section string
	Offset  int
	Err     error
}

// Error fulfills the error interface.
func (err ParseError) Error() string {
	if err.Section == "" {
		return fmt.Sprintf("%s: byte %d: %v", err.Path, err.Offset, err.Err)
	}
	return fmt.Sprintf("%s: byte %d: section [%s]: %v", err.Path, err.Offset, err.Section, err.Err)
}

// Unwrap returns the underlying cause of this error.
func (err ParseError) Unwrap() error {
	return err.Err
}

var _ error = ParseError{}

// }}}

// type LoadError {{{

// LoadError reports a magic file that was rejected as a whole.
type LoadError struct {
	Path string
	Err  error
}

// Error fulfills the error interface.
func (err LoadError) Error() string {
	return fmt.Sprintf("failed to load magic file %q: %v", err.Path, err.Err)
}

// Unwrap returns the underlying cause of this error.
func (err LoadError) Unwrap() error {
	return err.Err
}

var _ error = LoadError{}

// }}}
