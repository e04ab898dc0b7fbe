package mimeglob

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chronos-tachyon/xdgmime/lib/mimeutil"
)

// LoadStats summarizes one call to Load or LoadFile.
type LoadStats struct {
	Path    string
	Added   int
	Skipped []error
}

// LoadFile reads a globs file and adds its rules to the table.  Only a
// failure to open or read the file is returned as an error; malformed lines
// are skipped and reported in LoadStats.Skipped.
func (t *Table) LoadFile(path string) (LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadStats{Path: path}, LoadError{Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()
	return t.Load(f, path)
}

// Load reads globs-format text from r.  The path is used only for error
// reporting.
//
// Each line is "[weight:]glob:mime/type".  Blank lines and lines starting
// with '#' are ignored.
func (t *Table) Load(r io.Reader, path string) (LoadStats, error) {
	stats := LoadStats{Path: path}

	br := bufio.NewReader(r)
	lineNum := 0
	for {
		line, err := br.ReadString('\n')
		if line == "" && err != nil {
			if err == io.EOF {
				return stats, nil
			}
			return stats, LoadError{Path: path, Err: err}
		}
		lineNum++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || line[0] == '#' {
			continue
		}

		pattern, mimeType, weight, perr := ParseLine(line)
		if perr == nil {
			perr = t.Add(pattern, mimeType, weight)
		}
		if perr != nil {
			stats.Skipped = append(stats.Skipped, ParseError{Path: path, Line: lineNum, Err: perr})
			continue
		}
		stats.Added++
	}
}

// ParseLine splits one globs line into its parts.  The MIME type is the text
// after the last ':'.  When a ':' remains after that split, a leading run of
// digits before it is the weight.
func ParseLine(line string) (pattern string, mimeType string, weight int, err error) {
	if !mimeutil.ValidUTF8(line) {
		return "", "", 0, ErrBadEncoding
	}

	i := strings.LastIndexByte(line, ':')
	if i < 0 {
		return "", "", 0, ErrMissingSep
	}

	rest := line[:i]
	mimeType = strings.TrimSpace(line[i+1:])
	weight = DefaultWeight

	if j := strings.IndexByte(rest, ':'); j > 0 && allDigits(rest[:j]) {
		w, convErr := strconv.Atoi(rest[:j])
		if convErr != nil || w > MaxWeight {
			return "", "", 0, ErrBadWeight
		}
		weight = w
		rest = rest[j+1:]
	}

	if rest == "" {
		return "", "", 0, ErrEmptyGlob
	}
	if !mimeutil.HasMediaSlash(mimeType) {
		return "", "", 0, ErrBadMimeType
	}
	return rest, mimeType, weight, nil
}

func allDigits(str string) bool {
	for i := 0; i < len(str); i++ {
		if str[i] < '0' || str[i] > '9' {
			return false
		}
	}
	return str != ""
}
