package relayclient

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Pronana/actor-communicator/internal/directory"
	"github.com/Pronana/actor-communicator/internal/relay"
	"github.com/Pronana/actor-communicator/internal/world"
)

func testClient(t *testing.T) (*Client, *world.DB) {
	t.Helper()
	db, err := world.Open(filepath.Join(t.TempDir(), "world.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	srv := relay.NewServer(db, relay.NewHub(zap.NewNop()), zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = db.Close()
	})
	return New(ts.URL), db
}

func TestResolveAndList(t *testing.T) {
	c, db := testClient(t)
	ctx := context.Background()

	if err := db.UpsertActor(ctx, &directory.Actor{ID: "a1", Name: "Riggs", Owner: "sam"}); err != nil {
		t.Fatal(err)
	}

	actor, err := c.Resolve(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if actor == nil || actor.Name != "Riggs" {
		t.Errorf("Resolve = %+v", actor)
	}

	missing, err := c.Resolve(ctx, "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("Resolve(ghost) = %+v, want nil", missing)
	}

	actors, err := c.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(actors) != 1 {
		t.Errorf("List = %+v", actors)
	}
}

func TestResolveUser(t *testing.T) {
	c, db := testClient(t)
	ctx := context.Background()

	if err := db.UpsertUser(ctx, &directory.User{Name: "gm", Privileged: true}); err != nil {
		t.Fatal(err)
	}
	user, err := c.ResolveUser(ctx, "gm")
	if err != nil {
		t.Fatal(err)
	}
	if user == nil || !user.Privileged {
		t.Errorf("ResolveUser = %+v", user)
	}

	missing, err := c.ResolveUser(ctx, "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("ResolveUser(ghost) = %+v, want nil", missing)
	}
}

func TestFlagRoundTrip(t *testing.T) {
	c, _ := testClient(t)
	ctx := context.Background()

	got, err := c.GetFlag(ctx, "a1", "actor-communicator", "contacts")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("unset flag = %s", got)
	}

	val := json.RawMessage(`{"a2":{"id":"a2"}}`)
	if err := c.SetFlag(ctx, "a1", "actor-communicator", "contacts", val); err != nil {
		t.Fatal(err)
	}
	got, err = c.GetFlag(ctx, "a1", "actor-communicator", "contacts")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(val) {
		t.Errorf("flag = %s, want %s", got, val)
	}

	if err := c.DeleteFlag(ctx, "a1", "actor-communicator", "contacts"); err != nil {
		t.Fatal(err)
	}
	got, _ = c.GetFlag(ctx, "a1", "actor-communicator", "contacts")
	if got != nil {
		t.Errorf("deleted flag = %s", got)
	}
}
