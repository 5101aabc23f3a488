package datastore

import (
	"errors"
	"fmt"
)

// ErrUnsupportedOperator marks filter operators that are recognized but
// not implemented (CONTAINS, NOT_CONTAINS). Callers treat it as "no
// filter contributed", distinct from an empty value.
var ErrUnsupportedOperator = errors.New("filter operator not implemented")

// UnsupportedTypeError is returned when the scalar codec cannot encode
// or decode a type/value combination. It is distinct from the deliberate
// nil result of decoding UNKNOWN.
type UnsupportedTypeError struct {
	Type  DataType
	Value any
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported scalar type %s for value %v", e.Type, e.Value)
}

// MalformedMapKeyError is returned when a MAP wire key does not match
// the "{type=T, value=V}" micro-format. Decoding skips the entry and
// continues with the rest of the map.
type MalformedMapKeyError struct {
	Key string
}

func (e *MalformedMapKeyError) Error() string {
	return fmt.Sprintf("malformed map key %q: want {type=T, value=V}", e.Key)
}
