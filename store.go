package jdb

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/maruel/jdb/internal/pyjson"
)

// Version is recorded in the metadata entry of newly created files.
const Version = "0.2.1"

// MetadataKey is the reserved entry holding {"version": Version}.
const MetadataKey = "__jdbinfo__"

// Extension is appended to the name passed to [Open].
const Extension = ".db"

// Object is a JSON object value. Nested objects loaded from disk are
// returned as *Object and keep their key order.
type Object = pyjson.Object

// NewObject returns an empty *Object.
func NewObject() *Object {
	return pyjson.NewObject()
}

// Options configures [Open]. A nil *Options uses the defaults.
type Options struct {
	// Logger receives debug records about file operations. Nil discards them.
	Logger *slog.Logger
}

// Store is an in-memory JSON object mirrored to a single file.
//
// Values are nil, bool, string, int64, float64, json.Number (integers out of
// int64 range), []any and *Object once loaded from disk. Set accepts any
// value encoding/json can marshal.
type Store struct {
	name string
	path string
	log  *slog.Logger

	data *Object
}

// Open loads the store backing name, creating it when missing.
//
// name may be relative to the working directory or absolute, without the
// [Extension]. Backslashes are treated as path separators. A new file is
// written immediately with only the metadata entry.
func Open(name string, opts *Options) (*Store, error) {
	if name == "" {
		return nil, errors.New("jdb: name is required")
	}
	path, err := resolvePath(name)
	if err != nil {
		return nil, err
	}
	s := &Store{name: name, path: path, log: slog.New(slog.DiscardHandler)}
	if opts != nil && opts.Logger != nil {
		s.log = opts.Logger
	}

	if err := os.MkdirAll(parentDir(path), 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.data = newData()
		if err := s.write(); err != nil {
			return nil, err
		}
		s.log.Debug("Created database", "path", path)
	case err != nil:
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	case fi.IsDir():
		return nil, &PathIsDirectoryError{Path: path}
	case !fi.Mode().IsRegular():
		return nil, fmt.Errorf("jdb: %s is not a regular file", path)
	default:
		if s.data, err = s.read(); err != nil {
			return nil, err
		}
		s.log.Debug("Loaded database", "path", path, "keys", s.data.Len())
	}
	return s, nil
}

// With opens name, runs fn inside [Store.Scope] and returns the combined
// error.
func With(name string, opts *Options, fn func(*Store) error) error {
	s, err := Open(name, opts)
	if err != nil {
		return err
	}
	return s.Scope(fn)
}

// Name returns the name passed to [Open].
func (s *Store) Name() string {
	return s.name
}

// Path returns the absolute path of the backing file, with forward slashes.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value stored at key and whether key is present.
//
// A stored JSON null returns (nil, true). The value is not copied: changes to
// a returned *Object or slice element are visible to the store.
func (s *Store) Get(key string) (any, bool) {
	return s.data.Get(key)
}

// Set stores value at key, replacing any previous value. A new key goes to
// the end of the key order; an existing key keeps its position.
func (s *Store) Set(key string, value any) {
	s.data.Set(key, value)
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	s.data.Delete(key)
}

// Contains reports whether key is present.
func (s *Store) Contains(key string) bool {
	_, ok := s.data.Get(key)
	return ok
}

// FindKeysByValue returns, in key order, the keys whose value contains value.
//
// Containment is not equality: a stored string matches any substring of it,
// a stored array matches any of its elements, a stored object matches any of
// its key names, and other values match when equal. So "world" finds a key
// holding "hello world" but "hello world" doesn't find a key holding "world".
func (s *Store) FindKeysByValue(value any) []string {
	keys := []string{}
	for p := s.data.Oldest(); p != nil; p = p.Next() {
		if pyjson.Contains(p.Value, value) {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// Len returns the number of entries, including the metadata entry.
func (s *Store) Len() int {
	return s.data.Len()
}

// Keys returns all keys in order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, s.data.Len())
	for p := s.data.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// All returns an iterator over entries in key order.
func (s *Store) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for p := s.data.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Clear resets the in-memory content to the metadata entry only. The file is
// not touched until the next Save.
func (s *Store) Clear() {
	s.data = newData()
}

// Save rewrites the backing file with the in-memory content.
//
// When the backing file no longer exists (or is not a regular file) Save does
// nothing and returns nil. The write is not atomic.
func (s *Store) Save() error {
	if fi, err := os.Stat(s.path); err != nil || !fi.Mode().IsRegular() {
		s.log.Debug("Skipping save, backing file is gone", "path", s.path)
		return nil
	}
	if err := s.write(); err != nil {
		return err
	}
	s.log.Debug("Saved database", "path", s.path, "keys", s.data.Len())
	return nil
}

// Close saves the store. It exists for defer.
func (s *Store) Close() error {
	return s.Save()
}

// Scope calls fn with s then saves, whatever fn did. A panic in fn is
// re-raised after the save. The returned error joins fn's and Save's.
func (s *Store) Scope(fn func(*Store) error) (err error) {
	defer func() {
		r := recover()
		serr := s.Save()
		if r != nil {
			if serr != nil {
				s.log.Error("Failed to save after panic", "path", s.path, "err", serr)
			}
			panic(r)
		}
		err = errors.Join(err, serr)
	}()
	return fn(s)
}

// Reload replaces the in-memory content with the backing file, discarding
// unsaved changes. On error the content is left unchanged.
func (s *Store) Reload() error {
	data, err := s.read()
	if err != nil {
		return err
	}
	s.data = data
	s.log.Debug("Reloaded database", "path", s.path, "keys", data.Len())
	return nil
}

func (s *Store) read() (*Object, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	data, err := pyjson.DecodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return data, nil
}

// write encodes before truncating so an unencodable value leaves the file
// intact.
func (s *Store) write() error {
	raw, err := pyjson.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil { //nolint:gosec // G306: data files are meant to be readable
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// newData returns a fresh metadata-only mapping. Never share it between
// stores.
func newData() *Object {
	info := pyjson.NewObject()
	info.Set("version", Version)
	data := pyjson.NewObject()
	data.Set(MetadataKey, info)
	return data
}

func resolvePath(name string) (string, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", name, err)
	}
	// filepath.Abs cleans with the native separator; backslashes are
	// separators everywhere.
	abs = strings.ReplaceAll(abs, `\`, "/")
	return abs + Extension, nil
}

func parentDir(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return "/"
	}
	return path[:i]
}
