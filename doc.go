// Package jdb is a small embedded key-value store that keeps its whole content
// as one JSON document on disk.
//
// # Overview
//
// [Open] resolves a name to "<absolute name>.db", creating the file (and its
// parent directories) when missing. The document is loaded into memory once;
// [Store.Get], [Store.Set], [Store.Remove] and [Store.Clear] only touch memory
// and [Store.Save] rewrites the whole file.
//
//	err := jdb.With("settings", nil, func(db *jdb.Store) error {
//		db.Set("theme", "dark")
//		return nil
//	})
//
// [Store.Scope] and [With] always save when the callback returns, including on
// error or panic. Changes made before the failure are persisted, not rolled
// back.
//
// # File Format
//
// A single JSON object, written byte for byte like Python's json.dump with
// default arguments. The reserved key "__jdbinfo__" records the format version
// and is an ordinary entry: it is listed by [Store.Keys] and counted by
// [Store.Len]. Top-level key order is preserved across load and save.
//
// # Concurrency
//
// None. A Store must not be used from several goroutines without external
// locking, and two Stores on the same file silently diverge: the last save
// wins.
package jdb
