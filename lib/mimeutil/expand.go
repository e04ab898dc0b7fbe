package mimeutil

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
	homedir "github.com/mitchellh/go-homedir"

	"github.com/chronos-tachyon/xdgmime/internal/misc"
)

// ExpandString expands ${ENV_VAR} references.  Unset variables expand to the
// empty string and are reported as errors.
func ExpandString(in string) (string, error) {
	var errs multierror.Error

	expanded := os.Expand(in, func(name string) string {
		value, found := os.LookupEnv(name)
		if !found {
			errs.Errors = append(errs.Errors, EnvVarLookupError{Var: name, Err: ErrNotExist})
		}
		return value
	})

	return expanded, misc.ErrorOrNil(errs)
}

// ExpandPath expands ${ENV_VAR} references and ~ or ~user prefixes, then
// makes the result absolute relative to the current directory.
func ExpandPath(in string) (string, error) {
	return ExpandPathWithCWD(in, ".")
}

// ExpandPathWithCWD is ExpandPath with an explicit base directory for
// relative paths.  The empty string is returned unchanged.
func ExpandPathWithCWD(in string, cwd string) (string, error) {
	var errs multierror.Error

	expanded, err := ExpandString(in)
	if err != nil {
		errs.Errors = append(errs.Errors, err)
	}

	if expanded == "" {
		return "", misc.ErrorOrNil(errs)
	}

	if expanded[0] == '~' {
		var userName string
		var rest string
		if i := strings.IndexByte(expanded, '/'); i >= 0 {
			userName, rest = expanded[1:i], expanded[i+1:]
		} else {
			userName = expanded[1:]
		}

		homeDir, err := lookupHome(userName)
		if err != nil {
			errs.Errors = append(errs.Errors, err)
			homeDir = filepath.Join("/home", userName)
		}
		expanded = filepath.Join(homeDir, rest)
	}

	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(cwd, expanded)
	}
	if !filepath.IsAbs(expanded) {
		abs, err := filepath.Abs(expanded)
		if err != nil {
			errs.Errors = append(errs.Errors, PathAbsError{Path: expanded, Err: err})
			abs = expanded
		}
		expanded = abs
	}
	return filepath.Clean(expanded), misc.ErrorOrNil(errs)
}

// ExpandPathList splits a colon-separated list and expands each non-empty
// entry with ExpandPath.
func ExpandPathList(in string) ([]string, error) {
	var errs multierror.Error
	var out []string
	for _, piece := range strings.Split(in, ":") {
		if piece == "" {
			continue
		}
		abs, err := ExpandPath(piece)
		if err != nil {
			errs.Errors = append(errs.Errors, err)
		}
		out = append(out, abs)
	}
	return out, misc.ErrorOrNil(errs)
}

func lookupHome(userName string) (string, error) {
	if userName == "" {
		dir, err := homedir.Dir()
		if err != nil {
			return "", LookupHomeError{Err: err}
		}
		return dir, nil
	}

	u, err := user.Lookup(userName)
	if err != nil {
		if _, ok := err.(user.UnknownUserError); ok {
			err = ErrNotExist
		}
		return "", LookupHomeError{User: userName, Err: err}
	}
	return u.HomeDir, nil
}
