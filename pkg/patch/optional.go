// Package patch provides field types for partial-update request bodies.
package patch

import "encoding/json"

// Optional records whether a JSON field was present in the request body.
// An absent field leaves Set false; an explicit null sets Set with the zero
// value.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Of returns a present Optional holding v.
func Of[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Or returns the value when present, otherwise fallback.
func (o Optional[T]) Or(fallback T) T {
	if o.Set {
		return o.Value
	}
	return fallback
}
