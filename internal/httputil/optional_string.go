package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional tracks presence and value of a JSON PATCH field (RFC 7396):
//   - Present=false: field absent (keep the stored value)
//   - Present=true, Value=nil: field is JSON null (clear it, e.g. move to root)
//   - Present=true, Value!=nil: field carries a value
type Optional[T any] struct {
	Present bool
	Value   *T
}

// OptionalString is the common case for nullable ids and names
type OptionalString = Optional[string]

// UnmarshalJSON is only called when the field is present in the document
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Or returns the patched value when present, otherwise current
func (o Optional[T]) Or(current *T) *T {
	if !o.Present {
		return current
	}
	return o.Value
}
