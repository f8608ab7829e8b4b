package settings

import "errors"

var (
	// ErrConfigMissingRequired is returned by Validate when a required
	// field is empty. The wrapped message names the field.
	ErrConfigMissingRequired = errors.New("settings: required field is empty")

	// ErrUnknownField is returned when an override names a key that is
	// not in the table.
	ErrUnknownField = errors.New("settings: unknown field")

	// ErrFieldBounds is returned when a key or value exceeds its maximum length.
	ErrFieldBounds = errors.New("settings: field exceeds bounds")

	// ErrInvalidValue is returned when a numeric field does not parse.
	ErrInvalidValue = errors.New("settings: invalid field value")
)
