package model

import (
	"bytes"
	"encoding/json"
)

// Presence tells apart a key missing from a JSON object, a key set to null
// and a key carrying a value.
type Presence uint8

const (
	Absent Presence = iota
	Null
	Present
)

// Optional is a JSON field that remembers which of the three shapes it was
// decoded from. The zero value is Absent: encoding/json only calls
// UnmarshalJSON for keys that exist in the payload.
type Optional[T any] struct {
	value    T
	presence Presence
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, presence: Present}
}

// NullOf returns an Optional in the Null state.
func NullOf[T any]() Optional[T] {
	return Optional[T]{presence: Null}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.value, o.presence = zero, Null
		return nil
	}
	if err := json.Unmarshal(data, &o.value); err != nil {
		return err
	}
	o.presence = Present
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.presence != Present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// Get returns the value and whether one is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.presence == Present
}

func (o Optional[T]) Presence() Presence { return o.presence }
