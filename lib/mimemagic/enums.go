package mimemagic

import (
	"encoding/json"
	"fmt"
	"strings"
)

type enumData struct {
	GoName string
	Name   string
}

// type Semantics {{{

// Semantics selects how a rule's matchlet tree is combined.
type Semantics uint8

const (
	// Conjunctive requires every matchlet in the tree to match.
	Conjunctive Semantics = iota

	// Freedesktop follows shared-mime-info: alternatives at each level,
	// absolute offsets throughout.
	Freedesktop
)

var semanticsData = []enumData{
	{"Conjunctive", "conjunctive"},
	{"Freedesktop", "freedesktop"},
}

var semanticsMap = map[string]Semantics{
	"":            Conjunctive,
	"and":         Conjunctive,
	"conjunctive": Conjunctive,
	"xdg":         Freedesktop,
	"freedesktop": Freedesktop,
}

// ParseSemantics parses a Semantics name, case-insensitively.
func ParseSemantics(str string) (Semantics, error) {
	if num, ok := semanticsMap[strings.ToLower(str)]; ok {
		return num, nil
	}

	allowedNames := make([]string, len(semanticsData))
	for i, data := range semanticsData {
		allowedNames[i] = data.Name
	}
	return 0, fmt.Errorf("illegal magic semantics %q; expected one of %q", str, allowedNames)
}

// String returns the lowercase name.
func (s Semantics) String() string {
	if uint(s) >= uint(len(semanticsData)) {
		return fmt.Sprintf("#%d", uint(s))
	}
	return semanticsData[s].Name
}

// GoString returns the Go constant name.
func (s Semantics) GoString() string {
	if uint(s) >= uint(len(semanticsData)) {
		return fmt.Sprintf("Semantics(%d)", uint(s))
	}
	return semanticsData[s].GoName
}

// MarshalJSON fulfills json.Marshaler.
func (s Semantics) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON fulfills json.Unmarshaler.
func (ptr *Semantics) UnmarshalJSON(raw []byte) error {
	*ptr = 0

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return err
	}

	num, err := ParseSemantics(str)
	if err != nil {
		return err
	}
	*ptr = num
	return nil
}

var _ fmt.Stringer = Semantics(0)
var _ fmt.GoStringer = Semantics(0)
var _ json.Marshaler = Semantics(0)
var _ json.Unmarshaler = (*Semantics)(nil)

// }}}
