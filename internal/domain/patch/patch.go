// Package patch provides a JSON field that remembers whether it was sent.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is an optional value in a partial update. A field missing from the
// request body stays unset. An explicit null is present but Null.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Of builds a present, non-null field.
func Of[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Null builds a present field holding null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Has reports a present, non-null value.
func (f Field[T]) Has() bool {
	return f.Set && !f.Null
}

// Ptr returns nil for absent or null, otherwise a pointer to the value.
func (f Field[T]) Ptr() *T {
	if !f.Has() {
		return nil
	}
	v := f.Value
	return &v
}
