package directory

import "context"

// Static is a fixed in-memory directory for tests that want a
// populated world without a relay.
type Static struct {
	actors []Actor
	users  map[string]User
}

// NewStatic creates a directory holding the given actors.
func NewStatic(actors ...Actor) *Static {
	return &Static{actors: actors, users: make(map[string]User)}
}

// AddUser registers a user record.
func (s *Static) AddUser(u User) {
	s.users[u.Name] = u
}

// Resolve implements Directory.
func (s *Static) Resolve(_ context.Context, id string) (*Actor, error) {
	for i := range s.actors {
		if s.actors[i].ID == id {
			a := s.actors[i]
			return &a, nil
		}
	}
	return nil, nil
}

// List implements Directory.
func (s *Static) List(_ context.Context) ([]Actor, error) {
	out := make([]Actor, len(s.actors))
	copy(out, s.actors)
	return out, nil
}

// ResolveUser implements UserResolver.
func (s *Static) ResolveUser(_ context.Context, name string) (*User, error) {
	u, ok := s.users[name]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
