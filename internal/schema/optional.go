package schema

import (
	"bytes"
	"encoding/json"
)

// Optional is a partial-update field that tells absent, null and set apart.
// Use it with the omitzero tag option so absent fields stay off the wire.
type Optional[T any] struct {
	value T
	set   bool
	null  bool
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Null returns an Optional that clears the field
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsZero reports whether the field was absent
func (o Optional[T]) IsZero() bool { return !o.set }

// IsNull reports whether the field was explicitly null
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// Get returns the value and whether one is present
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set && !o.null
}

// ApplyTo overwrites dst when a value is present
func (o Optional[T]) ApplyTo(dst *T) {
	if v, ok := o.Get(); ok {
		*dst = v
	}
}

// ApplyPtr overwrites a nullable dst, clearing it on null
func (o Optional[T]) ApplyPtr(dst **T) {
	if !o.set {
		return
	}
	if o.null {
		*dst = nil
		return
	}
	v := o.value
	*dst = &v
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		var zero T
		o.value = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}
