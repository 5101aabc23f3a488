package datastore

import (
	"errors"
	"strings"
)

// SchemaValue is a wire value after schema decoding. For MAP the Value
// is a native map[string]any; for BYTES/TUPLE/OBJECT it is the literal
// type name as an opaque placeholder; for everything else the wire value
// passes through untouched (scalar decoding is the codec's job).
type SchemaValue struct {
	Name  string   `json:"name,omitempty"`
	Type  DataType `json:"type"`
	Value any      `json:"value"`
}

// Decode runs the scalar codec over the schema-decoded value. Composite
// values (maps, placeholders) are returned as-is.
func (v *SchemaValue) Decode() (any, error) {
	if v == nil {
		return nil, nil
	}
	if !v.Type.IsScalar() || v.Type == TypeBytes {
		return v.Value, nil
	}
	wire, ok := v.Value.(string)
	if !ok {
		// Already native (e.g. a keepNone null); pass through.
		return v.Value, nil
	}
	return Decode(v.Type, wire)
}

// DecodeSchema normalizes one tagged wire value ({type, value}) into a
// SchemaValue. The input is never mutated. A MAP whose keys are partly
// malformed yields the decodable entries plus a joined
// MalformedMapKeyError per bad key.
func DecodeSchema(raw any) (*SchemaValue, error) {
	tagged, ok := raw.(map[string]any)
	if !ok {
		if tv, ok := raw.(SchemaValue); ok {
			tagged = map[string]any{"type": string(tv.Type), "value": tv.Value}
		} else {
			return nil, nil
		}
	}

	typeName, _ := tagged["type"].(string)
	if typeName == "" {
		return nil, nil
	}
	t := DataType(typeName)
	value := tagged["value"]

	switch t {
	case TypeMap:
		decoded, err := decodeMapValue(value)
		return &SchemaValue{Type: t, Value: decoded}, err
	case TypeBytes, TypeTuple, TypeObject:
		// Composite payloads stay opaque at this layer; the type name
		// stands in for the value.
		return &SchemaValue{Type: t, Value: string(t)}, nil
	default:
		return &SchemaValue{Type: t, Value: value}, nil
	}
}

// decodeMapValue decodes a MAP payload: an object whose keys follow the
// "{type=T, value=V}" micro-format and whose values are tagged wire
// values decoded recursively.
func decodeMapValue(value any) (map[string]any, error) {
	entries, ok := value.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}

	out := make(map[string]any, len(entries))
	var errs []error
	for key, entry := range entries {
		_, keyValue, err := parseMapKey(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sv, err := DecodeSchema(entry)
		if err != nil {
			errs = append(errs, err)
		}
		if sv == nil {
			continue
		}
		out[keyValue] = sv.Value
	}
	return out, errors.Join(errs...)
}

// parseMapKey parses the MAP key micro-format "{type=T, value=V}". The
// value portion runs to the closing brace verbatim, so values containing
// '=' or ',' survive intact.
func parseMapKey(key string) (DataType, string, error) {
	s := strings.TrimSpace(key)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return "", "", &MalformedMapKeyError{Key: key}
	}
	s = s[1 : len(s)-1]

	typePart, rest, found := strings.Cut(s, ",")
	if !found {
		return "", "", &MalformedMapKeyError{Key: key}
	}
	typeName, ok := cutField(typePart, "type")
	if !ok {
		return "", "", &MalformedMapKeyError{Key: key}
	}
	value, ok := cutField(rest, "value")
	if !ok {
		return "", "", &MalformedMapKeyError{Key: key}
	}
	return DataType(typeName), value, nil
}

// cutField extracts "<name>=<v>" from a segment, trimming whitespace
// around the name and the value.
func cutField(segment, name string) (string, bool) {
	k, v, found := strings.Cut(segment, "=")
	if !found || strings.TrimSpace(k) != name {
		return "", false
	}
	return strings.TrimSpace(v), true
}
