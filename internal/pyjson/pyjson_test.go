package pyjson

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func object(kv ...any) *Object {
	o := NewObject()
	for i := 0; i < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

func TestMarshal(t *testing.T) {
	type row struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"null", nil, `null`},
		{"true", true, `true`},
		{"int", 5, `5`},
		{"negative int", int64(-42), `-42`},
		{"max uint64", uint64(math.MaxUint64), `18446744073709551615`},
		{"integral float", 5.0, `5.0`},
		{"float", 0.1, `0.1`},
		{"float32", float32(0.1), `0.1`},
		{"negative zero", math.Copysign(0, -1), `-0.0`},
		{"large float", 1e15, `1000000000000000.0`},
		{"exponent high", 1e16, `1e+16`},
		{"exponent low", 1e-05, `1e-05`},
		{"small float", 0.0001, `0.0001`},
		{"long exponent", 1.2345678901234568e+17, `1.2345678901234568e+17`},
		{"nan", math.NaN(), `NaN`},
		{"infinity", math.Inf(1), `Infinity`},
		{"negative infinity", []any{math.Inf(-1)}, `[-Infinity]`},
		{"big literal", json.Number("123456789012345678901234567890"), `123456789012345678901234567890`},
		{"string", "x", `"x"`},
		{"escapes", "a\"b\\c\n\r\t\b\f", `"a\"b\\c\n\r\t\b\f"`},
		{"control", "\x01\x7f", `"\u0001\u007f"`},
		{"html", "<&>", `"<&>"`},
		{"latin", "é", `"\u00e9"`},
		{"astral", "😀", `"\ud83d\ude00"`},
		{"empty array", []any{}, `[]`},
		{"array", []any{1, "a", nil, false}, `[1, "a", null, false]`},
		{"typed slice", []string{"a", "b"}, `["a", "b"]`},
		{"empty object", NewObject(), `{}`},
		{"ordered object", object("z", 1, "a", 2), `{"z": 1, "a": 2}`},
		{"map sorted", map[string]any{"b": 1, "a": 2}, `{"a": 2, "b": 1}`},
		{"struct", row{Name: "x", N: 3}, `{"name": "x", "n": 3}`},
		{"nested", object("a", []any{object("b", map[string]any{})}), `{"a": [{"b": {}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal(%#v) failed: %v", tt.in, err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal(%#v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestMarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"channel", make(chan int)},
		{"nested channel", []any{make(chan int)}},
		{"bad literal", json.Number("abc")},
		{"member", object("k", func() {})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := Marshal(tt.in); err == nil {
				t.Errorf("Marshal(%#v) = %s, want error", tt.in, got)
			}
		})
	}
}

func TestDecodeObject(t *testing.T) {
	t.Run("types", func(t *testing.T) {
		doc := `{"a": 1, "b": 1.0, "c": 1e2, "d": 123456789012345678901234567890, "e": [true, null, "x"], "f": {"z": 0, "y": 1}}`
		obj, err := DecodeObject([]byte(doc))
		if err != nil {
			t.Fatal(err)
		}
		if v, _ := obj.Get("a"); v != int64(1) {
			t.Errorf("a = %#v, want int64(1)", v)
		}
		if v, _ := obj.Get("b"); v != float64(1) {
			t.Errorf("b = %#v, want float64(1)", v)
		}
		if v, _ := obj.Get("c"); v != float64(100) {
			t.Errorf("c = %#v, want float64(100)", v)
		}
		if v, _ := obj.Get("d"); v != json.Number("123456789012345678901234567890") {
			t.Errorf("d = %#v, want json.Number", v)
		}
		v, _ := obj.Get("e")
		if diff := cmp.Diff([]any{true, nil, "x"}, v); diff != "" {
			t.Errorf("e mismatch (-want +got):\n%s", diff)
		}
		v, _ = obj.Get("f")
		f, ok := v.(*Object)
		if !ok {
			t.Fatalf("f = %T, want *Object", v)
		}
		if diff := cmp.Diff([]string{"z", "y"}, keys(f)); diff != "" {
			t.Errorf("f keys mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("duplicate key", func(t *testing.T) {
		obj, err := DecodeObject([]byte(`{"a": 1, "b": 2, "a": 3}`))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"a", "b"}, keys(obj)); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
		if v, _ := obj.Get("a"); v != int64(3) {
			t.Errorf("a = %#v, want 3", v)
		}
	})
	t.Run("non-finite", func(t *testing.T) {
		obj, err := DecodeObject([]byte(`{"n": NaN, "i": [Infinity, null, -Infinity], "s": "NaN -Infinity \"Infinity\"", "z": null}`))
		if err != nil {
			t.Fatal(err)
		}
		if v, _ := obj.Get("n"); !isNaN(v) {
			t.Errorf("n = %#v, want NaN", v)
		}
		v, _ := obj.Get("i")
		arr, ok := v.([]any)
		if !ok || len(arr) != 3 || arr[0] != math.Inf(1) || arr[1] != nil || arr[2] != math.Inf(-1) {
			t.Errorf("i = %#v, want [+Inf nil -Inf]", v)
		}
		if v, _ := obj.Get("s"); v != `NaN -Infinity "Infinity"` {
			t.Errorf("s = %#v, string content was rewritten", v)
		}
		if v, ok := obj.Get("z"); !ok || v != nil {
			t.Errorf("z = %#v, want nil", v)
		}
	})
	t.Run("lone surrogate", func(t *testing.T) {
		obj, err := DecodeObject([]byte(`{"s": "\ud800"}`))
		if err != nil {
			t.Fatal(err)
		}
		if v, _ := obj.Get("s"); v != "\ufffd" {
			t.Errorf("s = %+q, want U+FFFD", v)
		}
		got, err := Marshal(obj)
		if err != nil {
			t.Fatal(err)
		}
		if want := `{"s": "\ufffd"}`; string(got) != want {
			t.Errorf("Marshal = %s, want %s", got, want)
		}
	})
	t.Run("errors", func(t *testing.T) {
		for _, doc := range []string{
			``,
			`   `,
			`[1]`,
			`"x"`,
			`{`,
			`{"a": }`,
			`{"a" 1}`,
			`{} {}`,
			`{"a": 1} x`,
			"{\"s\": \"\xff\"}",
			`{"a": NaNa}`,
			`{"a": -Inf}`,
		} {
			if _, err := DecodeObject([]byte(doc)); err == nil {
				t.Errorf("DecodeObject(%q) succeeded, want error", doc)
			}
		}
	})
	t.Run("syntax error", func(t *testing.T) {
		_, err := DecodeObject([]byte(`{"a": tru}`))
		var serr *json.SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("DecodeObject error = %v, want *json.SyntaxError", err)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	docs := []string{
		`{"__jdbinfo__": {"version": "0.2.1"}}`,
		`{"__jdbinfo__": {"version": "0.2.1"}, "b": 1.0, "a": [1, 2.5, null, true, false], "u": "\u00e9\ud83d\ude00", "n": {"z": {}, "y": []}, "big": 123456789012345678901234567890, "e": 1e-05}`,
		`{}`,
		`{"x": NaN, "y": Infinity, "z": [-Infinity, null], "s": "NaN"}`,
	}
	for _, doc := range docs {
		obj, err := DecodeObject([]byte(doc))
		if err != nil {
			t.Fatalf("DecodeObject(%s) failed: %v", doc, err)
		}
		got, err := Marshal(obj)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != doc {
			t.Errorf("round trip:\ngot  %s\nwant %s", got, doc)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int float", 1, 1.0, true},
		{"int literal", int64(1), json.Number("1"), true},
		{"float literal", 2.5, json.Number("25e-1"), true},
		{"bool number", true, 1, false},
		{"null", nil, nil, true},
		{"null zero", nil, 0, false},
		{"string", "a", "a", true},
		{"string number", "0", 0, false},
		{"arrays", []any{1, "a"}, []any{1.0, "a"}, true},
		{"array length", []any{1}, []any{1, 2}, false},
		{"typed slice", []string{"a"}, []any{"a"}, true},
		{"objects unordered", object("a", 1, "b", 2), map[string]any{"b": 2, "a": 1}, true},
		{"objects differ", object("a", 1), object("a", 2), false},
		{"objects keys differ", object("a", 1), object("b", 1), false},
		{"object array", object(), []any{}, false},
		{"infinity", math.Inf(1), math.Inf(1), true},
		{"infinities differ", math.Inf(1), math.Inf(-1), false},
		{"infinity number", math.Inf(1), int64(1), false},
		{"nan", math.NaN(), math.NaN(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%#v, %#v) = %t, want %t", tt.a, tt.b, got, tt.want)
			}
			if got := Equal(tt.b, tt.a); got != tt.want {
				t.Errorf("Equal(%#v, %#v) = %t, want %t", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name      string
		container any
		v         any
		want      bool
	}{
		{"substring", "hello world", "world", true},
		{"superstring", "world", "hello world", false},
		{"empty substring", "abc", "", true},
		{"number in string", "abc1", 1, false},
		{"array element", []any{"a", int64(1)}, 1.0, true},
		{"array missing", []any{"a"}, "b", false},
		{"array nested", []any{[]any{1}}, []any{1}, true},
		{"array no substring", []any{"abc"}, "b", false},
		{"object key", object("version", "0.2.1"), "version", true},
		{"object value", object("version", "0.2.1"), "0.2.1", false},
		{"object number", object("1", 1), 1, false},
		{"map key", map[string]any{"k": 1}, "k", true},
		{"scalar equal", int64(5), 5, true},
		{"scalar differ", int64(5), 6, false},
		{"bool", true, true, true},
		{"bool element is not a number", []any{true}, 1, false},
		{"number element is not a bool", []any{int64(1)}, true, false},
		{"null", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(tt.container, tt.v); got != tt.want {
				t.Errorf("Contains(%#v, %#v) = %t, want %t", tt.container, tt.v, got, tt.want)
			}
		})
	}
}

func keys(o *Object) []string {
	var out []string
	for p := o.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

func isNaN(v any) bool {
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}
