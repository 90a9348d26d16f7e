package world

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Flag storage: one JSON document per (entity, namespace, key). This
// is the durable key-value primitive everything above it builds on;
// an absent key is not an error.

// GetFlag returns the stored value, or nil when the key is unset.
func (db *DB) GetFlag(ctx context.Context, entityID, namespace, key string) (json.RawMessage, error) {
	var raw []byte
	err := db.QueryRowContext(ctx,
		`SELECT value FROM entity_flags WHERE entity_id = ? AND namespace = ? AND key = ?`,
		entityID, namespace, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// SetFlag stores value under (entity, namespace, key), replacing any
// previous value in a single statement.
func (db *DB) SetFlag(ctx context.Context, entityID, namespace, key string, value json.RawMessage) error {
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO entity_flags (entity_id, namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(entity_id, namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		entityID, namespace, key, string(value), now)
	return err
}

// DeleteFlag removes the key. Deleting an unset key is a no-op.
func (db *DB) DeleteFlag(ctx context.Context, entityID, namespace, key string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM entity_flags WHERE entity_id = ? AND namespace = ? AND key = ?`,
		entityID, namespace, key)
	return err
}
