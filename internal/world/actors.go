package world

import (
	"context"
	"database/sql"
	"time"

	"github.com/Pronana/actor-communicator/internal/directory"
)

// UpsertActor inserts or updates an actor record.
func (db *DB) UpsertActor(ctx context.Context, a *directory.Actor) error {
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO actors (id, name, owner, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			owner = excluded.owner,
			updated_at = excluded.updated_at`,
		a.ID, a.Name, a.Owner, now, now)
	return err
}

// GetActor returns an actor by id, or nil when absent.
func (db *DB) GetActor(ctx context.Context, id string) (*directory.Actor, error) {
	var a directory.Actor
	err := db.QueryRowContext(ctx,
		`SELECT id, name, owner FROM actors WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.Owner)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListActors returns all actors ordered by name.
func (db *DB) ListActors(ctx context.Context) ([]directory.Actor, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, owner FROM actors ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var actors []directory.Actor
	for rows.Next() {
		var a directory.Actor
		if err := rows.Scan(&a.ID, &a.Name, &a.Owner); err != nil {
			return nil, err
		}
		actors = append(actors, a)
	}
	return actors, rows.Err()
}

// DeleteActor removes an actor record. Flags stored for the actor are
// kept; they become unreachable until the id is reused.
func (db *DB) DeleteActor(ctx context.Context, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM actors WHERE id = ?`, id)
	return err
}

// UpsertUser inserts or updates a user record.
func (db *DB) UpsertUser(ctx context.Context, u *directory.User) error {
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (name, privileged, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			privileged = excluded.privileged,
			updated_at = excluded.updated_at`,
		u.Name, u.Privileged, now)
	return err
}

// GetUser returns a user by name, or nil when absent.
func (db *DB) GetUser(ctx context.Context, name string) (*directory.User, error) {
	var u directory.User
	err := db.QueryRowContext(ctx,
		`SELECT name, privileged FROM users WHERE name = ?`, name).
		Scan(&u.Name, &u.Privileged)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all users ordered by name.
func (db *DB) ListUsers(ctx context.Context) ([]directory.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name, privileged FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []directory.User
	for rows.Next() {
		var u directory.User
		if err := rows.Scan(&u.Name, &u.Privileged); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Directory adapts the world database to the directory interfaces.
type Directory struct {
	DB *DB
}

// Resolve implements directory.Directory.
func (d Directory) Resolve(ctx context.Context, id string) (*directory.Actor, error) {
	return d.DB.GetActor(ctx, id)
}

// List implements directory.Directory.
func (d Directory) List(ctx context.Context) ([]directory.Actor, error) {
	return d.DB.ListActors(ctx)
}

// ResolveUser implements directory.UserResolver.
func (d Directory) ResolveUser(ctx context.Context, name string) (*directory.User, error) {
	return d.DB.GetUser(ctx, name)
}
