package kvstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerrad567/netclock/internal/infrastructure/database"
)

// SQLiteBackend stores entries in the kv_store table.
type SQLiteBackend struct {
	db *database.DB
}

// NewSQLiteBackend creates a backend on an open, migrated database.
func NewSQLiteBackend(db *database.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

// LoadAll reads the whole table.
func (b *SQLiteBackend) LoadAll(ctx context.Context) (map[string]string, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT key, value FROM kv_store")
	if err != nil {
		return nil, fmt.Errorf("querying kv_store: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning kv_store row: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating kv_store: %w", err)
	}
	return out, nil
}

// Write upserts all entries in a single transaction.
func (b *SQLiteBackend) Write(ctx context.Context, entries map[string]string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return b.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
		if err != nil {
			return fmt.Errorf("preparing upsert: %w", err)
		}
		defer stmt.Close()

		for key, value := range entries {
			if _, err := stmt.ExecContext(ctx, key, value, now); err != nil {
				return fmt.Errorf("upserting %s: %w", key, err)
			}
		}
		return nil
	})
}
