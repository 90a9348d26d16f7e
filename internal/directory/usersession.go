package directory

import (
	"context"
	"sync"
)

// UserSession tracks which actor the local user is currently acting
// as. The active actor can change at runtime when the user takes
// token control of another owned character.
type UserSession struct {
	user User
	dir  Directory

	mu      sync.RWMutex
	actorID string
}

// NewUserSession creates a session for user, initially controlling
// actorID (may be empty).
func NewUserSession(user User, dir Directory, actorID string) *UserSession {
	return &UserSession{user: user, dir: dir, actorID: actorID}
}

// User returns the acting user.
func (s *UserSession) User() User {
	return s.user
}

// Privileged reports whether the acting user is GM-equivalent.
func (s *UserSession) Privileged() bool {
	return s.user.Privileged
}

// ActiveActor resolves the currently controlled actor, or (nil, nil)
// when none is set or the id no longer resolves.
func (s *UserSession) ActiveActor(ctx context.Context) (*Actor, error) {
	s.mu.RLock()
	id := s.actorID
	s.mu.RUnlock()
	if id == "" {
		return nil, nil
	}
	return s.dir.Resolve(ctx, id)
}

// ActiveActorID returns the controlled actor id without resolving it.
func (s *UserSession) ActiveActorID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actorID
}

// Control switches token control to the given actor id.
func (s *UserSession) Control(actorID string) {
	s.mu.Lock()
	s.actorID = actorID
	s.mu.Unlock()
}
