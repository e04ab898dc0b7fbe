// Package basedir computes the XDG data directories that hold MIME rules.
package basedir

import (
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/chronos-tachyon/xdgmime/internal/constants"
)

// LookupEnvFunc has the signature of os.LookupEnv.
type LookupEnvFunc func(string) (string, bool)

// SearchPath returns the data directories in lookup order: the user's data
// home first, then each entry of the system data directories.
//
// $XDG_DATA_HOME replaces the guessed "$HOME/.local/share", and
// $XDG_DATA_DIRS replaces "/usr/local/share/:/usr/share/".  An empty
// variable counts as unset.  Empty list entries are skipped, and a
// directory listed twice is kept only at its first position.
func SearchPath(lookupEnv LookupEnvFunc) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(dir string) {
		if dir == "" {
			return
		}
		dir = filepath.Clean(dir)
		if _, found := seen[dir]; found {
			return
		}
		seen[dir] = struct{}{}
		out = append(out, dir)
	}

	add(DataHome(lookupEnv))

	dataDirs := getenv(lookupEnv, constants.EnvDataDirs)
	if dataDirs == "" {
		dataDirs = constants.DefaultDataDirs
	}
	for _, dir := range strings.Split(dataDirs, ":") {
		add(dir)
	}
	return out
}

// DataHome returns the user's data home, or "" if neither $XDG_DATA_HOME
// nor a home directory can be found.
func DataHome(lookupEnv LookupEnvFunc) string {
	if dir := getenv(lookupEnv, constants.EnvDataHome); dir != "" {
		return dir
	}

	home := getenv(lookupEnv, constants.EnvHome)
	if home == "" {
		var err error
		home, err = homedir.Dir()
		if err != nil {
			return ""
		}
	}
	if home == "" {
		return ""
	}
	return filepath.Join(home, constants.DefaultDataHomeSuffix)
}

func getenv(lookupEnv LookupEnvFunc, name string) string {
	if lookupEnv == nil {
		return ""
	}
	value, _ := lookupEnv(name)
	return value
}
