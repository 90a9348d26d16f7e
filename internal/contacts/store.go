package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Pronana/actor-communicator/internal/directory"
)

// ErrNoContact is returned when a chat append targets a contact the
// owner does not have. The router adds the entry before appending, so
// hitting this means a caller skipped that step.
var ErrNoContact = errors.New("no contact entry for that actor")

// ActorResolver is the subset of the directory the store needs.
type ActorResolver interface {
	Resolve(ctx context.Context, id string) (*directory.Actor, error)
}

// Store reads and writes per-actor contact maps through the host's
// flag storage. The whole map is one flag value; every mutation is a
// full read-modify-write of the owner's store.
type Store struct {
	flags FlagStore
	dir   ActorResolver
}

// NewStore creates a contact store over the given flag storage.
func NewStore(flags FlagStore, dir ActorResolver) *Store {
	return &Store{flags: flags, dir: dir}
}

// List returns the owner's contact entries sorted by contact id.
// An owner with no persisted store has no contacts.
func (s *Store) List(ctx context.Context, ownerID string) ([]Entry, error) {
	m, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Entry, 0, len(m))
	for _, id := range ids {
		out = append(out, *m[id])
	}
	return out, nil
}

// Has reports whether the owner has contactID as a contact.
func (s *Store) Has(ctx context.Context, ownerID, contactID string) (bool, error) {
	m, err := s.load(ctx, ownerID)
	if err != nil {
		return false, err
	}
	_, ok := m[contactID]
	return ok, nil
}

// Get returns the owner's entry for contactID, or nil when absent.
func (s *Store) Get(ctx context.Context, ownerID, contactID string) (*Entry, error) {
	m, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	e, ok := m[contactID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

// Add creates a contact entry for contactID under ownerID. Adding an
// existing contact returns the existing entry untouched. Adding
// yourself, or adding under an actor the directory cannot resolve, is
// a silent no-op returning (nil, nil).
func (s *Store) Add(ctx context.Context, ownerID, contactID string, anonymous bool) (*Entry, error) {
	if contactID == ownerID {
		return nil, nil
	}
	owner, err := s.dir.Resolve(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("resolve owner %q: %w", ownerID, err)
	}
	if owner == nil {
		return nil, nil
	}

	m, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if existing, ok := m[contactID]; ok {
		cp := *existing
		return &cp, nil
	}

	entry := &Entry{
		ID:          contactID,
		Anonymous:   anonymous,
		ChatHistory: []Message{},
	}
	m[contactID] = entry
	if err := s.save(ctx, ownerID, m); err != nil {
		return nil, err
	}
	cp := *entry
	return &cp, nil
}

// Remove deletes the owner's entry for contactID, chat history
// included. Removing an absent contact is a no-op.
func (s *Store) Remove(ctx context.Context, ownerID, contactID string) error {
	m, err := s.load(ctx, ownerID)
	if err != nil {
		return err
	}
	if _, ok := m[contactID]; !ok {
		return nil
	}
	delete(m, contactID)
	return s.save(ctx, ownerID, m)
}

// ResetAll wipes the owner's entire persisted state, current and
// legacy keys both.
func (s *Store) ResetAll(ctx context.Context, ownerID string) error {
	if err := s.flags.DeleteFlag(ctx, ownerID, Namespace, KeyContacts); err != nil {
		return fmt.Errorf("clear contacts: %w", err)
	}
	if err := s.flags.DeleteFlag(ctx, ownerID, Namespace, KeyLegacyHistory); err != nil {
		return fmt.Errorf("clear legacy chat history: %w", err)
	}
	return nil
}

// Append adds msg to the owner's chat history under contactID and
// persists the store. The entry must already exist.
func (s *Store) Append(ctx context.Context, ownerID, contactID string, msg Message) error {
	m, err := s.load(ctx, ownerID)
	if err != nil {
		return err
	}
	entry, ok := m[contactID]
	if !ok {
		return fmt.Errorf("append under %s/%s: %w", ownerID, contactID, ErrNoContact)
	}
	entry.ChatHistory = append(entry.ChatHistory, msg)
	return s.save(ctx, ownerID, m)
}

// History returns the owner's chat log with contactID in append
// order, or an empty slice when no entry exists.
func (s *Store) History(ctx context.Context, ownerID, contactID string) ([]Message, error) {
	m, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	entry, ok := m[contactID]
	if !ok {
		return []Message{}, nil
	}
	out := make([]Message, len(entry.ChatHistory))
	copy(out, entry.ChatHistory)
	return out, nil
}

func (s *Store) load(ctx context.Context, ownerID string) (map[string]*Entry, error) {
	raw, err := s.flags.GetFlag(ctx, ownerID, Namespace, KeyContacts)
	if err != nil {
		return nil, fmt.Errorf("read contacts flag for %q: %w", ownerID, err)
	}
	return decodeEntries(raw)
}

func (s *Store) save(ctx context.Context, ownerID string, m map[string]*Entry) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode contacts for %q: %w", ownerID, err)
	}
	if err := s.flags.SetFlag(ctx, ownerID, Namespace, KeyContacts, raw); err != nil {
		return fmt.Errorf("write contacts flag for %q: %w", ownerID, err)
	}
	return nil
}

// decodeEntries tolerates the three historical encodings of the
// contacts flag: unset, a structured object, or a JSON string holding
// the stringified object (the original persisted format). Writes only
// ever use the structured form.
func decodeEntries(raw json.RawMessage) (map[string]*Entry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]*Entry{}, nil
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("decode string-encoded contacts flag: %w", err)
		}
		trimmed = []byte(inner)
	}
	var m map[string]*Entry
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, fmt.Errorf("decode contacts flag: %w", err)
	}
	if m == nil {
		m = map[string]*Entry{}
	}
	for id, e := range m {
		if e == nil {
			delete(m, id)
			continue
		}
		// Old records may omit the embedded id.
		if e.ID == "" {
			e.ID = id
		}
	}
	return m, nil
}
