package mainutil

import (
	"fmt"
)

// type OptionError {{{

// OptionError indicates an error while parsing options.
type OptionError struct {
	Name     string
	Value    string
	Err      error
	Complete bool
}

// Error fulfills the error interface.
func (err OptionError) Error() string {
	str := err.Name
	if err.Complete {
		str = err.Name + "=" + err.Value
	}
	return fmt.Sprintf("option %q: %v", str, err.Err)
}

// Unwrap returns the underlying cause of this error.
func (err OptionError) Unwrap() error {
	return err.Err
}

var _ error = OptionError{}

// }}}

// type UnknownOptionError {{{

// UnknownOptionError indicates that an unknown option was encountered.
type UnknownOptionError struct{}

// Error fulfills the error interface.
func (UnknownOptionError) Error() string {
	return "unknown option name"
}

var _ error = UnknownOptionError{}

// }}}

// type ListenError {{{

// ListenError indicates that a listener could not be opened.
type ListenError struct {
	Subsystem string
	Config    ListenConfig
	Err       error
}

// Error fulfills the error interface.
func (err ListenError) Error() string {
	return fmt.Sprintf("%s: failed to listen on %s: %v", err.Subsystem, err.Config.String(), err.Err)
}

// Unwrap returns the underlying cause of this error.
func (err ListenError) Unwrap() error {
	return err.Err
}

var _ error = ListenError{}

// }}}
