package datastore

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
)

// Encode converts a native value to its wire string representation for
// the given type. UNKNOWN always encodes to the empty string; type/value
// combinations outside the contract return an UnsupportedTypeError.
func Encode(t DataType, value any) (string, error) {
	switch t {
	case TypeUnknown:
		return "", nil
	case TypeBool:
		b, ok := value.(bool)
		if !ok {
			return "", &UnsupportedTypeError{Type: t, Value: value}
		}
		if b {
			return "1", nil
		}
		return "0", nil
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return "", &UnsupportedTypeError{Type: t, Value: value}
		}
		return s, nil
	case TypeBytes:
		b, ok := value.([]byte)
		if !ok {
			return "", &UnsupportedTypeError{Type: t, Value: value}
		}
		return base64.StdEncoding.EncodeToString(b), nil
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		i, ok := toInt64(value)
		if !ok {
			return "", &UnsupportedTypeError{Type: t, Value: value}
		}
		return strconv.FormatInt(i, 16), nil
	case TypeFloat16:
		f, ok := toFloat64(value)
		if !ok {
			return "", &UnsupportedTypeError{Type: t, Value: value}
		}
		return fmt.Sprintf("%04x", float16Bits(f)), nil
	case TypeFloat32:
		f, ok := toFloat64(value)
		if !ok {
			return "", &UnsupportedTypeError{Type: t, Value: value}
		}
		return fmt.Sprintf("%08x", math.Float32bits(float32(f))), nil
	case TypeFloat64:
		f, ok := toFloat64(value)
		if !ok {
			return "", &UnsupportedTypeError{Type: t, Value: value}
		}
		return fmt.Sprintf("%016x", math.Float64bits(f)), nil
	default:
		return "", &UnsupportedTypeError{Type: t, Value: value}
	}
}

// Decode converts a wire string back to a native value for the given
// type. Integers decode to int64, floats to float64, BYTES to []byte.
// UNKNOWN always decodes to nil, which is not an error.
func Decode(t DataType, wire string) (any, error) {
	switch t {
	case TypeUnknown:
		return nil, nil
	case TypeBool:
		switch wire {
		case "1":
			return true, nil
		case "0":
			return false, nil
		default:
			return nil, &UnsupportedTypeError{Type: t, Value: wire}
		}
	case TypeString:
		return wire, nil
	case TypeBytes:
		b, err := base64.StdEncoding.DecodeString(wire)
		if err != nil {
			return nil, &UnsupportedTypeError{Type: t, Value: wire}
		}
		return b, nil
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		i, err := strconv.ParseInt(wire, 16, 64)
		if err != nil {
			return nil, &UnsupportedTypeError{Type: t, Value: wire}
		}
		return i, nil
	case TypeFloat16:
		bits, err := hexBits(wire, 2)
		if err != nil {
			return nil, &UnsupportedTypeError{Type: t, Value: wire}
		}
		return float16From(uint16(bits)), nil
	case TypeFloat32:
		bits, err := hexBits(wire, 4)
		if err != nil {
			return nil, &UnsupportedTypeError{Type: t, Value: wire}
		}
		return float64(math.Float32frombits(uint32(bits))), nil
	case TypeFloat64:
		bits, err := hexBits(wire, 8)
		if err != nil {
			return nil, &UnsupportedTypeError{Type: t, Value: wire}
		}
		return math.Float64frombits(bits), nil
	default:
		return nil, &UnsupportedTypeError{Type: t, Value: wire}
	}
}

// hexBits parses a big-endian hex string of exactly size bytes.
func hexBits(wire string, size int) (uint64, error) {
	raw, err := hex.DecodeString(wire)
	if err != nil {
		return 0, err
	}
	if len(raw) != size {
		return 0, fmt.Errorf("want %d bytes, got %d", size, len(raw))
	}
	buf := make([]byte, 8)
	copy(buf[8-size:], raw)
	return binary.BigEndian.Uint64(buf), nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		// JSON numbers arrive as float64.
		if n == math.Trunc(n) {
			return int64(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// float16From expands IEEE-754 binary16 bits to float64.
func float16From(bits uint16) float64 {
	sign := float64(1)
	if bits&0x8000 != 0 {
		sign = -1
	}
	exp := int((bits >> 10) & 0x1f)
	frac := float64(bits & 0x3ff)

	switch exp {
	case 0:
		// Subnormal.
		return sign * frac * math.Pow(2, -24)
	case 0x1f:
		if frac != 0 {
			return math.NaN()
		}
		return sign * math.Inf(1)
	default:
		return sign * (1 + frac/1024) * math.Pow(2, float64(exp-15))
	}
}

// float16Bits converts a float64 to IEEE-754 binary16 bits with
// round-to-nearest-even. Values outside the half range become Inf.
func float16Bits(f float64) uint16 {
	b64 := math.Float64bits(f)
	sign := uint16(b64 >> 48 & 0x8000)
	if math.IsNaN(f) {
		return sign | 0x7e00
	}
	if math.IsInf(f, 0) {
		return sign | 0x7c00
	}

	exp := int(b64>>52&0x7ff) - 1023
	mant := b64 & 0xfffffffffffff

	if exp > 15 {
		// Overflow to infinity.
		return sign | 0x7c00
	}
	if exp >= -14 {
		// Normal: keep 10 mantissa bits, round to nearest even.
		m := mant >> 42
		rest := mant & 0x3ffffffffff
		half := uint64(1) << 41
		if rest > half || (rest == half && m&1 == 1) {
			m++
			if m == 0x400 {
				m = 0
				exp++
				if exp > 15 {
					return sign | 0x7c00
				}
			}
		}
		return sign | uint16(exp+15)<<10 | uint16(m)
	}
	if exp >= -25 {
		// Subnormal: shift the implicit leading bit into the mantissa.
		m := (mant | 1<<52) >> uint(-exp-14+42)
		rest := (mant | 1<<52) & (1<<uint(-exp-14+42) - 1)
		half := uint64(1) << uint(-exp-14+41)
		if rest > half || (rest == half && m&1 == 1) {
			m++
		}
		return sign | uint16(m)
	}
	// Underflow to signed zero.
	return sign
}
