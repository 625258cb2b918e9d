package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a record identifier. The API issues UUID strings, but numeric identifiers
// from older fixtures are accepted and kept in their decimal form.
type ID string

// String returns the identifier text
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty
func (id ID) IsZero() bool {
	return id == ""
}

// UnmarshalJSON accepts strings, numbers and null
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding identifier %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}
