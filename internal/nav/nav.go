// Package nav holds the directory UI's screen state machine. Exactly
// one screen is active at a time; everything else a renderer needs
// (notHome, the actors button) is derived on transition, never set
// directly.
package nav

import (
	"context"
	"sync"

	"github.com/Pronana/actor-communicator/internal/bus"
	"github.com/Pronana/actor-communicator/internal/contacts"
)

// State identifies one directory screen.
type State string

const (
	StateHome     State = "home"
	StateContacts State = "contacts"
	StateContact  State = "contact"
	StateActors   State = "actors"
)

var known = map[State]bool{
	StateHome:     true,
	StateContacts: true,
	StateContact:  true,
	StateActors:   true,
}

// Snapshot is a read-only view of the machine for rendering.
type Snapshot struct {
	Home     bool
	Contacts bool
	Contact  bool
	Actors   bool

	NotHome          bool
	ShowActorsButton bool
	SelectedContact  string
}

// Machine is the navigation state machine for one client session.
type Machine struct {
	mu         sync.RWMutex
	current    State
	selected   string
	privileged func() bool
	resolver   contacts.ActorResolver
	bus        *bus.Bus
}

// NewMachine creates a machine starting at home. privileged is
// re-evaluated on every transition; resolver guards OpenContact.
func NewMachine(privileged func() bool, resolver contacts.ActorResolver, b *bus.Bus) *Machine {
	return &Machine{
		current:    StateHome,
		privileged: privileged,
		resolver:   resolver,
		bus:        b,
	}
}

// Current returns the active screen.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Snapshot returns the derived view of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		Home:             m.current == StateHome,
		Contacts:         m.current == StateContacts,
		Contact:          m.current == StateContact,
		Actors:           m.current == StateActors,
		NotHome:          m.current != StateHome,
		ShowActorsButton: m.privileged(),
		SelectedContact:  m.selected,
	}
}

// GoTo switches to the given screen. Unrecognized states are ignored.
func (m *Machine) GoTo(state State) {
	if !known[state] {
		return
	}
	m.mu.Lock()
	m.current = state
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
}

// OpenContact switches to the contact screen with contactID selected.
// An id the directory cannot resolve leaves the machine untouched.
func (m *Machine) OpenContact(ctx context.Context, contactID string) error {
	if contactID == "" {
		return nil
	}
	actor, err := m.resolver.Resolve(ctx, contactID)
	if err != nil {
		return err
	}
	if actor == nil {
		return nil
	}
	m.mu.Lock()
	m.current = StateContact
	m.selected = contactID
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
	return nil
}

// SelectedContact returns the selected contact id, empty when none.
func (m *Machine) SelectedContact() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected
}

// SelectActor clears the contact selection and forces the machine
// home. Called when the user switches the locally active character.
func (m *Machine) SelectActor() {
	m.mu.Lock()
	m.selected = ""
	m.current = StateHome
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
}

func (m *Machine) publish(snap Snapshot) {
	if m.bus != nil {
		m.bus.Publish(bus.KindNavChanged, snap)
	}
}
