// Package watchlist records the rule files a resolver was built from, so
// that later changes to them can be noticed.
package watchlist

import (
	"os"
	"path/filepath"
	"time"

	"github.com/chronos-tachyon/xdgmime/internal/constants"
)

// Source is one rule file as it was when the list was built.  A file that
// did not exist has Exists false and the zero ModTime.
type Source struct {
	Path    string
	ModTime time.Time
	Size    int64
	Exists  bool
}

func statSource(path string) Source {
	src := Source{Path: path}
	fi, err := os.Stat(path)
	if err != nil {
		return src
	}
	src.ModTime = fi.ModTime()
	src.Size = fi.Size()
	src.Exists = true
	return src
}

// Same reports whether two observations of the same path agree.
func (src Source) Same(other Source) bool {
	if src.Exists != other.Exists {
		return false
	}
	if !src.Exists {
		return true
	}
	return src.Size == other.Size && src.ModTime.Equal(other.ModTime)
}

// List is an immutable snapshot of every rule file under a search path.
type List struct {
	dirs    []string
	sources []Source
}

// Build stats the globs and magic files of each directory in dirs.  Both
// are recorded whether or not they exist.
func Build(dirs []string) *List {
	list := &List{
		dirs:    make([]string, len(dirs)),
		sources: make([]Source, 0, 2*len(dirs)),
	}
	copy(list.dirs, dirs)
	for _, dir := range dirs {
		list.sources = append(list.sources, statSource(filepath.Join(dir, constants.GlobsFile)))
		list.sources = append(list.sources, statSource(filepath.Join(dir, constants.MagicFile)))
	}
	return list
}

// Dirs returns the search path the list was built from.
func (list *List) Dirs() []string {
	out := make([]string, len(list.dirs))
	copy(out, list.dirs)
	return out
}

// Sources returns a copy of the recorded observations.
func (list *List) Sources() []Source {
	out := make([]Source, len(list.sources))
	copy(out, list.sources)
	return out
}

// Len returns the number of recorded sources.
func (list *List) Len() int {
	return len(list.sources)
}

// IsStale re-stats every source and reports whether any of them changed,
// appeared, or vanished.  It never modifies the list.
func (list *List) IsStale() bool {
	for _, src := range list.sources {
		if !src.Same(statSource(src.Path)) {
			return true
		}
	}
	return false
}

// Changed is IsStale, but returns the paths that differ.
func (list *List) Changed() []string {
	var out []string
	for _, src := range list.sources {
		if !src.Same(statSource(src.Path)) {
			out = append(out, src.Path)
		}
	}
	return out
}

// Existing returns the paths of the sources that existed at build time.
func (list *List) Existing() []string {
	var out []string
	for _, src := range list.sources {
		if src.Exists {
			out = append(out, src.Path)
		}
	}
	return out
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.IsDir()
}
