package jdb

import "errors"

// ErrPathIsDirectory is matched by [PathIsDirectoryError] with errors.Is.
var ErrPathIsDirectory = errors.New("path is a directory")

// PathIsDirectoryError is returned by [Open] when the backing path already
// exists as a directory.
type PathIsDirectoryError struct {
	Path string
}

func (e *PathIsDirectoryError) Error() string {
	return "jdb: " + e.Path + ": the specified path is a directory"
}

// Is implements errors.Is.
func (e *PathIsDirectoryError) Is(target error) bool {
	return target == ErrPathIsDirectory
}
