package world

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/Pronana/actor-communicator/internal/directory"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "world.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestActorUpsertGetList(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	a := &directory.Actor{ID: "a1", Name: "Riggs", Owner: "sam"}
	if err := db.UpsertActor(ctx, a); err != nil {
		t.Fatal(err)
	}
	// Rename on second upsert.
	a.Name = "Riggs II"
	if err := db.UpsertActor(ctx, a); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetActor(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "Riggs II" || got.Owner != "sam" {
		t.Errorf("GetActor = %+v", got)
	}

	missing, err := db.GetActor(ctx, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("GetActor(nope) = %+v, want nil", missing)
	}

	if err := db.UpsertActor(ctx, &directory.Actor{ID: "a2", Name: "Brick"}); err != nil {
		t.Fatal(err)
	}
	actors, err := db.ListActors(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(actors) != 2 {
		t.Fatalf("got %d actors, want 2", len(actors))
	}
	// Ordered by name.
	if actors[0].ID != "a2" {
		t.Errorf("first actor = %q, want a2 (Brick)", actors[0].ID)
	}
}

func TestUserUpsertGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.UpsertUser(ctx, &directory.User{Name: "gm", Privileged: true}); err != nil {
		t.Fatal(err)
	}
	u, err := db.GetUser(ctx, "gm")
	if err != nil {
		t.Fatal(err)
	}
	if u == nil || !u.Privileged {
		t.Errorf("GetUser(gm) = %+v", u)
	}

	u, err = db.GetUser(ctx, "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if u != nil {
		t.Errorf("GetUser(ghost) = %+v, want nil", u)
	}
}

func TestFlagRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	got, err := db.GetFlag(ctx, "a1", "actor-communicator", "contacts")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("unset flag = %s, want nil", got)
	}

	val := json.RawMessage(`{"a2":{"id":"a2"}}`)
	if err := db.SetFlag(ctx, "a1", "actor-communicator", "contacts", val); err != nil {
		t.Fatal(err)
	}
	got, err = db.GetFlag(ctx, "a1", "actor-communicator", "contacts")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(val) {
		t.Errorf("flag = %s, want %s", got, val)
	}

	// Replace.
	if err := db.SetFlag(ctx, "a1", "actor-communicator", "contacts", json.RawMessage(`{}`)); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetFlag(ctx, "a1", "actor-communicator", "contacts")
	if string(got) != `{}` {
		t.Errorf("flag = %s, want {}", got)
	}

	if err := db.DeleteFlag(ctx, "a1", "actor-communicator", "contacts"); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetFlag(ctx, "a1", "actor-communicator", "contacts")
	if got != nil {
		t.Errorf("deleted flag = %s, want nil", got)
	}

	// Deleting again is a no-op.
	if err := db.DeleteFlag(ctx, "a1", "actor-communicator", "contacts"); err != nil {
		t.Errorf("second delete error = %v", err)
	}
}

func TestDirectoryAdapter(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.UpsertActor(ctx, &directory.Actor{ID: "a1", Name: "Riggs"}); err != nil {
		t.Fatal(err)
	}
	dir := Directory{DB: db}

	a, err := dir.Resolve(ctx, "a1")
	if err != nil || a == nil || a.Name != "Riggs" {
		t.Errorf("Resolve = %+v, %v", a, err)
	}
	actors, err := dir.List(ctx)
	if err != nil || len(actors) != 1 {
		t.Errorf("List = %+v, %v", actors, err)
	}
}
