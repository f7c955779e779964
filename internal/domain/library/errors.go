package library

import "errors"

var (
	ErrLibraryNotFound = errors.New("library not found")
)
