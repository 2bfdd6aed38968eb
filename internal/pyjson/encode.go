package pyjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

const hex = "0123456789abcdef"

// Marshal encodes v the way Python's json.dumps does with default arguments.
//
// Values outside the decoded value model (Go integer and float kinds,
// map[string]any, structs, typed slices) are accepted and normalized first.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any) error {
	v, err := canonical(v)
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case string:
		writeString(buf, x)
	case int64:
		buf.WriteString(strconv.FormatInt(x, 10))
	case float64:
		return writeFloat(buf, x)
	case json.Number:
		if !isNumberLiteral(x.String()) {
			return fmt.Errorf("invalid number literal %q", x.String())
		}
		buf.WriteString(x.String())
	case []any:
		buf.WriteByte('[')
		for i, e := range x {
			if i != 0 {
				buf.WriteString(", ")
			}
			if err := encode(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Object:
		if x == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		first := true
		for p := x.Oldest(); p != nil; p = p.Next() {
			if !first {
				buf.WriteString(", ")
			}
			first = false
			if err := writeMember(buf, p.Key, p.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i != 0 {
				buf.WriteString(", ")
			}
			if err := writeMember(buf, k, x[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value of type %T", v)
	}
	return nil
}

func writeMember(buf *bytes.Buffer, key string, v any) error {
	writeString(buf, key)
	buf.WriteString(": ")
	if err := encode(buf, v); err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	return nil
}

// writeFloat formats like Python's float repr: shortest round-trip digits,
// exponent form outside [1e-4, 1e16), ".0" on integral values. Non-finite
// values use the NaN, Infinity and -Infinity literals.
func writeFloat(buf *bytes.Buffer, f float64) error {
	switch {
	case math.IsNaN(f):
		buf.WriteString("NaN")
		return nil
	case math.IsInf(f, 1):
		buf.WriteString("Infinity")
		return nil
	case math.IsInf(f, -1):
		buf.WriteString("-Infinity")
		return nil
	}
	if a := math.Abs(f); a != 0 && (a < 1e-4 || a >= 1e16) {
		buf.WriteString(strconv.FormatFloat(f, 'e', -1, 64))
		return nil
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	buf.WriteString(s)
	if !strings.Contains(s, ".") {
		buf.WriteString(".0")
	}
	return nil
}

// writeString quotes s keeping only printable ASCII literal.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				buf.WriteRune(r)
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				writeEscape(buf, r1)
				writeEscape(buf, r2)
			default:
				writeEscape(buf, r)
			}
		}
	}
	buf.WriteByte('"')
}

func writeEscape(buf *bytes.Buffer, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hex[r>>12&0xf])
	buf.WriteByte(hex[r>>8&0xf])
	buf.WriteByte(hex[r>>4&0xf])
	buf.WriteByte(hex[r&0xf])
}

func isNumberLiteral(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

// canonical maps v into the decoded value model, leaving map[string]any as
// is. Types it doesn't know go through encoding/json.
func canonical(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string, int64, float64, json.Number, []any, *Object, map[string]any:
		return v, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		return fromUint(uint64(x)), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return fromUint(x), nil
	case float32:
		// Shortest 32-bit digits, so float32(0.1) stays 0.1.
		f, err := strconv.ParseFloat(strconv.FormatFloat(float64(x), 'g', -1, 32), 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	return Decode(b)
}

func fromUint(u uint64) any {
	if u > math.MaxInt64 {
		return json.Number(strconv.FormatUint(u, 10))
	}
	return int64(u)
}
