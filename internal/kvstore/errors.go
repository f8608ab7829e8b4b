package kvstore

import "errors"

var (
	// ErrNotFound is returned when a key has never been written.
	ErrNotFound = errors.New("kvstore: key not found")

	// ErrNotInteger is returned by GetInteger when the stored text is not
	// a decimal integer.
	ErrNotInteger = errors.New("kvstore: value is not an integer")

	// ErrEmptyKey is returned when writing with an empty key.
	ErrEmptyKey = errors.New("kvstore: empty key")
)
