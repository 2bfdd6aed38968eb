package pyjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object that remembers key insertion order.
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an empty Object.
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// DecodeObject parses a document whose top-level value must be an object.
func DecodeObject(data []byte) (*Object, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("top-level JSON value is %s, want object", kindOf(v))
	}
	return obj, nil
}

// Decode parses a single JSON value. Trailing data other than whitespace is
// an error, and so is input that is not valid UTF-8.
//
// The non-standard literals NaN, Infinity and -Infinity are accepted and
// decode to float64.
func Decode(data []byte) (any, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("invalid UTF-8 in JSON document")
	}
	data, nonFinite := replaceNonFinite(data)
	d := &decoder{dec: json.NewDecoder(bytes.NewReader(data)), nonFinite: nonFinite}
	d.dec.UseNumber()
	tok, err := d.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	v, err := d.value(tok)
	if err != nil {
		return nil, err
	}
	if tok, err := d.dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected %v after top-level value", tok)
	}
	return v, nil
}

type decoder struct {
	dec *json.Decoder
	// nulls counts null tokens seen so far; nonFinite maps a null token's
	// ordinal to the float it stands for.
	nulls     int
	nonFinite map[int]float64
}

func (d *decoder) value(tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return d.object()
		case '[':
			return d.array()
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case json.Number:
		return number(t), nil
	case nil:
		n := d.nulls
		d.nulls++
		if f, ok := d.nonFinite[n]; ok {
			return f, nil
		}
		return nil, nil
	case string, bool:
		return t, nil
	default:
		return nil, fmt.Errorf("unexpected token %T", tok)
	}
}

// object reads members up to and including the closing brace. A repeated
// key keeps its first position and its last value.
func (d *decoder) object() (*Object, error) {
	obj := NewObject()
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, want string", tok)
		}
		if tok, err = d.dec.Token(); err != nil {
			return nil, err
		}
		v, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (d *decoder) array() ([]any, error) {
	arr := []any{}
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// replaceNonFinite rewrites NaN, Infinity and -Infinity outside of strings
// as null, returning which null literals (by ordinal) they were.
func replaceNonFinite(data []byte) ([]byte, map[int]float64) {
	if !bytes.Contains(data, []byte("NaN")) && !bytes.Contains(data, []byte("Infinity")) {
		return data, nil
	}
	out := make([]byte, 0, len(data)+8)
	nonFinite := map[int]float64{}
	nulls := 0
	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch c {
			case '\\':
				if i+1 < len(data) {
					i++
					out = append(out, data[i])
				}
			case '"':
				inString = false
			}
			continue
		}
		rest := data[i:]
		switch {
		case c == '"':
			inString = true
		case bytes.HasPrefix(rest, []byte("null")):
			nulls++
		case bytes.HasPrefix(rest, []byte("NaN")):
			nonFinite[nulls] = math.NaN()
			nulls++
			out = append(out, "null"...)
			i += len("NaN") - 1
			continue
		case bytes.HasPrefix(rest, []byte("Infinity")):
			nonFinite[nulls] = math.Inf(1)
			nulls++
			out = append(out, "null"...)
			i += len("Infinity") - 1
			continue
		case bytes.HasPrefix(rest, []byte("-Infinity")):
			nonFinite[nulls] = math.Inf(-1)
			nulls++
			out = append(out, "null"...)
			i += len("-Infinity") - 1
			continue
		}
		out = append(out, c)
	}
	return out, nonFinite
}

// number maps a literal to int64 or float64, keeping the literal when
// neither can hold it.
func number(n json.Number) any {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return n
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case *Object:
		return "object"
	default:
		return "number"
	}
}
