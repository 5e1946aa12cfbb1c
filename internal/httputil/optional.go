package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional records whether a JSON field was sent, for RFC 7396 merge-patch bodies:
//   - Present=false: field absent, leave unchanged
//   - Present=true, Value=nil: explicit null, clear
//   - Present=true, Value!=nil: set
type Optional[T any] struct {
	Present bool
	Value   *T
}

// OptionalString is the PATCH form of a nullable text field
type OptionalString = Optional[string]

// UnmarshalJSON is only invoked for fields present in the payload
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.Value = nil

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
