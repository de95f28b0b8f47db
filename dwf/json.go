package dwf

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes a Func as its string name.
func (f Func) MarshalJSON() ([]byte, error) {
	s := FormatFunc(f)
	if s == "" {
		return nil, fmt.Errorf("%d: %w", int(f), ErrBadFunc)
	}
	return json.Marshal(s)
}

// UnmarshalJSON decodes a Func from its string name.
func (f *Func) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("function kind should be a string, got %s", data)
	}
	fn, err := ValidateFunc(s)
	if err != nil {
		return fmt.Errorf("%q: %w", s, err)
	}
	*f = fn
	return nil
}
