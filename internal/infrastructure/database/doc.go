// Package database provides the SQLite connection that backs the clock's
// persistent key/value store.
//
// It covers:
//   - Opening the file with WAL mode and a busy timeout
//   - Versioned schema migrations embedded in the binary
//   - A transaction helper used for batched flushes
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
