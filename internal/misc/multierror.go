package misc

import (
	multierror "github.com/hashicorp/go-multierror"
)

// ErrorOrNil collapses a multierror.Error: nil for no errors, the bare error
// for exactly one, and a flattened copy otherwise.
func ErrorOrNil(multi multierror.Error) error {
	switch uint(len(multi.Errors)) {
	case 0:
		return nil

	case 1:
		return multi.Errors[0]

	default:
		clone := &multierror.Error{
			Errors:      make([]error, 0, len(multi.Errors)),
			ErrorFormat: multi.ErrorFormat,
		}
		flatten(clone, multi.Errors...)
		return clone
	}
}

// Errors returns the individual errors wrapped by err, flattening nested
// *multierror.Error values.  A nil err yields nil.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	var out multierror.Error
	flatten(&out, err)
	return out.Errors
}

func flatten(out *multierror.Error, errs ...error) {
	for _, e := range errs {
		switch x := e.(type) {
		case *multierror.Error:
			flatten(out, x.Errors...)
		default:
			out.Errors = append(out.Errors, e)
		}
	}
}
