// Package directory models the host's actor and user registry. The
// relay daemon owns the authoritative copy; session clients see it
// through the Directory interface and never create or destroy actors.
package directory

import "context"

// Actor is a controllable character entity, externally owned.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner"` // user name controlling this actor, empty = world-owned
}

// User is a connected party. Privileged users are GM-equivalent.
type User struct {
	Name       string `json:"name"`
	Privileged bool   `json:"privileged"`
}

// Directory resolves actor ids to actor records.
type Directory interface {
	// Resolve returns the actor with the given id, or (nil, nil) when
	// no such actor exists.
	Resolve(ctx context.Context, id string) (*Actor, error)
	// List returns all known actors.
	List(ctx context.Context) ([]Actor, error)
}

// UserResolver resolves user names to user records.
type UserResolver interface {
	ResolveUser(ctx context.Context, name string) (*User, error)
}
