package misc

import (
	"bytes"
	"encoding/json"
	"errors"
)

// StrictUnmarshalJSON decodes exactly one JSON value from raw into v.
// Unknown object fields and trailing values are errors, and numbers
// decoded into interface{} stay json.Number.
func StrictUnmarshalJSON(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
