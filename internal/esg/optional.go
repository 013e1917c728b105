package esg

import (
	"bytes"
	"encoding/json"
)

// Opt is an assessment value that may be left unset by the business.
// The zero Opt is unset. Unset values are never coerced to zero outside the
// scoring formulas so completeness can tell "not reported" from "reported 0".
type Opt[T any] struct {
	value T
	set   bool
}

// Some returns a set Opt holding v
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// None returns an unset Opt
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is set
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value was provided
func (o Opt[T]) IsSet() bool {
	return o.set
}

// OrZero returns the value, or the zero value of T when unset
func (o Opt[T]) OrZero() T {
	return o.value
}

// IsZero lets encoding/json omitzero drop unset values
func (o Opt[T]) IsZero() bool {
	return !o.set
}

// ValidationValue exposes the wrapped value to pkg/validator
func (o Opt[T]) ValidationValue() (any, bool) {
	if !o.set {
		return nil, false
	}
	return o.value, true
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Opt[T]{value: v, set: true}
	return nil
}
