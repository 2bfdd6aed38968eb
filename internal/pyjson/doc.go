// Package pyjson reads and writes JSON documents in the byte format produced
// by Python's json.dump with default arguments.
//
// # Value model
//
// Decoded values use a small closed set of Go types:
//
//   - nil, bool, string
//   - int64 for integer literals that fit, json.Number for those that don't
//   - float64 for literals with a fraction or an exponent
//   - []any for arrays
//   - [Object] pointers for objects, keeping the document's key order
//
// Keeping integers and floats apart makes "5" and "5.0" survive a
// load/save cycle unchanged.
//
// # Output format
//
// [Marshal] writes ", " and ": " separators, escapes every non-ASCII rune as
// \uXXXX (surrogate pairs above U+FFFF) and formats floats like Python's
// repr, including the non-standard NaN, Infinity and -Infinity literals,
// which [Decode] reads back. Plain Go maps have no order so their keys are
// sorted.
//
// Input must be valid UTF-8. Lone surrogate escapes such as "\ud800" decode
// to U+FFFD and are written back as "\ufffd".
package pyjson
