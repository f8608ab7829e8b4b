package command

import "errors"

var (
	// ErrNoMatchingCommand is returned when no table entry accepts a message.
	ErrNoMatchingCommand = errors.New("command: no matching command")

	// ErrStorePersist is returned when an accepted value could not be made
	// durable. The cached value has still been applied.
	ErrStorePersist = errors.New("command: persisting value failed")

	// ErrStoreReadInconsistency is returned by LoadPersisted when a value
	// that seeding should have written cannot be read back.
	ErrStoreReadInconsistency = errors.New("command: persisted value missing after seeding")

	// ErrDuplicateCommand is returned when a table is built with two
	// entries of the same name.
	ErrDuplicateCommand = errors.New("command: duplicate name")
)
