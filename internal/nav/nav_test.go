package nav

import (
	"context"
	"testing"
	"time"

	"github.com/Pronana/actor-communicator/internal/bus"
	"github.com/Pronana/actor-communicator/internal/directory"
)

func testMachine(privileged bool) (*Machine, *bus.Bus) {
	dir := directory.NewStatic(
		directory.Actor{ID: "a1", Name: "Riggs"},
		directory.Actor{ID: "a2", Name: "Brick"},
	)
	b := bus.New()
	return NewMachine(func() bool { return privileged }, dir, b), b
}

func TestInitialState(t *testing.T) {
	m, _ := testMachine(false)
	if m.Current() != StateHome {
		t.Errorf("initial state = %q, want home", m.Current())
	}
	snap := m.Snapshot()
	if !snap.Home || snap.NotHome {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestGoToExclusivity(t *testing.T) {
	for _, state := range []State{StateHome, StateContacts, StateContact, StateActors} {
		t.Run(string(state), func(t *testing.T) {
			m, _ := testMachine(false)
			m.GoTo(state)

			snap := m.Snapshot()
			active := 0
			for _, flag := range []bool{snap.Home, snap.Contacts, snap.Contact, snap.Actors} {
				if flag {
					active++
				}
			}
			if active != 1 {
				t.Errorf("%d screens active, want exactly 1 (%+v)", active, snap)
			}
			if snap.NotHome != (state != StateHome) {
				t.Errorf("NotHome = %v for state %q", snap.NotHome, state)
			}
		})
	}
}

func TestGoToUnknownStateIgnored(t *testing.T) {
	m, _ := testMachine(false)
	m.GoTo(StateContacts)
	m.GoTo(State("settings"))
	if m.Current() != StateContacts {
		t.Errorf("state = %q, want contacts", m.Current())
	}
}

func TestShowActorsButtonTracksPrivilege(t *testing.T) {
	privileged := false
	dir := directory.NewStatic()
	m := NewMachine(func() bool { return privileged }, dir, nil)

	m.GoTo(StateContacts)
	if m.Snapshot().ShowActorsButton {
		t.Error("actors button shown for unprivileged user")
	}

	privileged = true
	m.GoTo(StateHome)
	if !m.Snapshot().ShowActorsButton {
		t.Error("actors button hidden for privileged user")
	}
}

func TestOpenContact(t *testing.T) {
	m, _ := testMachine(false)

	if err := m.OpenContact(context.Background(), "a2"); err != nil {
		t.Fatal(err)
	}
	if m.Current() != StateContact {
		t.Errorf("state = %q, want contact", m.Current())
	}
	if m.SelectedContact() != "a2" {
		t.Errorf("selected = %q, want a2", m.SelectedContact())
	}
}

func TestOpenContactUnresolvedIsNoOp(t *testing.T) {
	m, _ := testMachine(false)
	m.GoTo(StateContacts)

	if err := m.OpenContact(context.Background(), "ghost"); err != nil {
		t.Fatal(err)
	}
	// Guard holds: no transition to an unselected contact screen.
	if m.Current() != StateContacts {
		t.Errorf("state = %q, want contacts", m.Current())
	}
	if m.SelectedContact() != "" {
		t.Errorf("selected = %q, want empty", m.SelectedContact())
	}
}

func TestSelectActorForcesHome(t *testing.T) {
	m, _ := testMachine(false)
	if err := m.OpenContact(context.Background(), "a1"); err != nil {
		t.Fatal(err)
	}

	m.SelectActor()
	if m.Current() != StateHome {
		t.Errorf("state = %q, want home", m.Current())
	}
	if m.SelectedContact() != "" {
		t.Errorf("selected = %q, want cleared", m.SelectedContact())
	}
}

func TestTransitionsPublishSnapshots(t *testing.T) {
	m, b := testMachine(true)
	ch, unsub := b.Subscribe("nav.", 10)
	defer unsub()

	m.GoTo(StateActors)

	select {
	case evt := <-ch:
		snap, ok := evt.Payload.(Snapshot)
		if !ok || !snap.Actors {
			t.Errorf("payload = %#v", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no nav event published")
	}
}
