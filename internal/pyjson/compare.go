package pyjson

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"
)

// Equal reports whether a and b hold the same JSON value.
//
// Numbers compare by value regardless of representation, so 1, int64(1),
// 1.0 and json.Number("1") are all equal. Booleans are never equal to
// numbers. Objects compare by content, ignoring key order. NaN equals
// nothing, infinities equal themselves.
func Equal(a, b any) bool {
	a, errA := canonical(a)
	b, errB := canonical(b)
	if errA != nil || errB != nil {
		return false
	}
	if x, ok := a.(float64); ok && !isFinite(x) {
		y, ok := b.(float64)
		return ok && x == y
	}
	if y, ok := b.(float64); ok && !isFinite(y) {
		return false
	}
	if x, ok := toNumber(a); ok {
		y, ok := toNumber(b)
		return ok && x.Cmp(y) == 0
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Object, map[string]any:
		return equalObjects(a, b)
	}
	return false
}

// Contains reports whether v is a member of container:
//
//   - string: v is a string and a substring of it
//   - array: some element is Equal to v
//   - object: v is a string naming one of its keys
//   - anything else: container is Equal to v
func Contains(container, v any) bool {
	c, err := canonical(container)
	if err != nil {
		return false
	}
	switch x := c.(type) {
	case string:
		s, ok := v.(string)
		return ok && strings.Contains(x, s)
	case []any:
		for _, e := range x {
			if Equal(e, v) {
				return true
			}
		}
		return false
	case *Object:
		k, ok := v.(string)
		if !ok || x == nil {
			return false
		}
		_, ok = x.Get(k)
		return ok
	case map[string]any:
		k, ok := v.(string)
		if !ok {
			return false
		}
		_, ok = x[k]
		return ok
	default:
		return Equal(c, v)
	}
}

func equalObjects(a, b any) bool {
	x, y := members(a), members(b)
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	if len(x) != len(y) {
		return false
	}
	for k, v := range x {
		w, ok := y[k]
		if !ok || !Equal(v, w) {
			return false
		}
	}
	return true
}

func members(v any) map[string]any {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return map[string]any{}
		}
		return x
	case *Object:
		if x == nil {
			return nil
		}
		m := make(map[string]any, x.Len())
		for p := x.Oldest(); p != nil; p = p.Next() {
			m[p.Key] = p.Value
		}
		return m
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// toNumber returns v as an exact rational when v is a JSON number.
func toNumber(v any) (*big.Rat, bool) {
	switch x := v.(type) {
	case int64:
		return new(big.Rat).SetInt64(x), true
	case float64:
		r := new(big.Rat)
		if r.SetFloat64(x) == nil {
			return nil, false
		}
		return r, true
	case json.Number:
		r, ok := new(big.Rat).SetString(x.String())
		return r, ok
	}
	return nil, false
}
