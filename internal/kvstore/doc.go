// Package kvstore is the durable key/value store that keeps the clock's
// runtime-adjustable settings across power cycles.
//
// A Store keeps every value in an in-memory cache loaded on Open. Writes
// come in two flavours:
//   - Put stages a value; nothing reaches the backend until Flush
//   - UpdateNumber writes through immediately and reports failure
//
// An entry whose write-through failed stays dirty, so the next Flush
// retries it. Values are stored as text; integers are written in decimal.
//
// Usage:
//
//	store, err := kvstore.Open(ctx, kvstore.NewSQLiteBackend(db))
//	if err != nil {
//	    return err
//	}
//	if !store.Exists("UTCOFFSET") {
//	    store.Put("UTCOFFSET", "-28800")
//	}
//	if err := store.Flush(ctx); err != nil {
//	    return err
//	}
package kvstore
