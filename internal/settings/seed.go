package settings

import (
	"context"
	"fmt"
)

// PersistedKeys are the fields mirrored into the persistent store and
// adjustable at runtime by remote command.
var PersistedKeys = []string{KeyUTCOffset, KeyTime24}

// Store is the subset of the persistent store used for seeding.
type Store interface {
	Exists(key string) bool
	Put(key, value string)
	Flush(ctx context.Context) error
}

// Seed writes the compiled-in default of each persisted field that the
// store does not have yet, then flushes once. Against a store that already
// holds every persisted key it writes nothing.
//
// Returns:
//   - []string: Keys that were seeded
//   - error: If the flush fails
func Seed(ctx context.Context, store Store, static *Static) ([]string, error) {
	var seeded []string
	for _, key := range PersistedKeys {
		if store.Exists(key) {
			continue
		}
		store.Put(key, static.Get(key))
		seeded = append(seeded, key)
	}
	if err := store.Flush(ctx); err != nil {
		return seeded, fmt.Errorf("flushing seeded defaults: %w", err)
	}
	return seeded, nil
}
