package mimeglob

import (
	"encoding/json"
	"fmt"
	"strings"
)

type enumData struct {
	GoName string
	Name   string
}

// type Kind {{{

// Kind is the shape of a glob rule, which decides how it is indexed.
type Kind uint8

const (
	// LiteralKind rules match a whole base name exactly.
	LiteralKind Kind = iota

	// SuffixKind rules are "*" followed by a literal suffix.
	SuffixKind

	// GlobKind rules need full glob evaluation.
	GlobKind
)

var kindData = []enumData{
	{"LiteralKind", "literal"},
	{"SuffixKind", "suffix"},
	{"GlobKind", "glob"},
}

var kindMap = map[string]Kind{
	"literal": LiteralKind,
	"suffix":  SuffixKind,
	"glob":    GlobKind,
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if uint(k) >= uint(len(kindData)) {
		return fmt.Sprintf("#%d", uint(k))
	}
	return kindData[k].Name
}

// GoString returns the Go constant name of the kind.
func (k Kind) GoString() string {
	if uint(k) >= uint(len(kindData)) {
		return fmt.Sprintf("Kind(%d)", uint(k))
	}
	return kindData[k].GoName
}

// MarshalJSON fulfills json.Marshaler.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON fulfills json.Unmarshaler.
func (ptr *Kind) UnmarshalJSON(raw []byte) error {
	*ptr = 0

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return err
	}

	if num, ok := kindMap[strings.ToLower(str)]; ok {
		*ptr = num
		return nil
	}

	allowedNames := make([]string, len(kindData))
	for i, data := range kindData {
		allowedNames[i] = data.Name
	}
	return fmt.Errorf("illegal glob kind %q; expected one of %q", str, allowedNames)
}

var _ fmt.Stringer = Kind(0)
var _ fmt.GoStringer = Kind(0)
var _ json.Marshaler = Kind(0)
var _ json.Unmarshaler = (*Kind)(nil)

// }}}

// ClassifyPattern determines which Kind a pattern belongs to.
func ClassifyPattern(pattern string) Kind {
	if !hasMeta(pattern) {
		return LiteralKind
	}
	if pattern[0] == '*' && len(pattern) > 1 && !hasMeta(pattern[1:]) {
		return SuffixKind
	}
	return GlobKind
}

func hasMeta(str string) bool {
	return strings.ContainsAny(str, `*?[{\`)
}
