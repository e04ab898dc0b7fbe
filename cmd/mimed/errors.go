package main

import (
	"fmt"
)

// type ConfigLoadError {{{

// ConfigLoadError reports a problem with the --config file.  Section names
// the JSON field at fault, if known.
type ConfigLoadError struct {
	Path    string
	Section string
	Err     error
}

func (err ConfigLoadError) Error() string {
	if err.Section == "" {
		return fmt.Sprintf("config %q: %v", err.Path, err.Err)
	}
	return fmt.Sprintf("config %q: %s: %v", err.Path, err.Section, err.Err)
}

func (err ConfigLoadError) Unwrap() error {
	return err.Err
}

var _ error = ConfigLoadError{}

// }}}
