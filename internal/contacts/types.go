// Package contacts implements the per-actor contact directory and the
// chat history nested inside it. Each actor's store is an independent
// view: A having B as a contact says nothing about B's side.
package contacts

import (
	"context"
	"encoding/json"
)

// Namespace scopes every flag this module writes.
const Namespace = "actor-communicator"

// Flag keys under Namespace.
const (
	KeyContacts = "contacts"
	// KeyLegacyHistory held per-contact chat maps in older versions.
	// Only ResetAll still touches it.
	KeyLegacyHistory = "chat-history"
)

// Message is a single chat message, immutable once created.
// UnknownSender is fixed at send time: it records whether the
// recipient had the sender as a contact when the message was built.
type Message struct {
	ID            string `json:"id"`
	SenderID      string `json:"senderId"`
	RecipientID   string `json:"recipientId"`
	Text          string `json:"text"`
	UnknownSender bool   `json:"unknownSender"`
	SentAt        int64  `json:"sentAt"` // unix ms
}

// Entry is one contact relationship in an owning actor's store,
// keyed by the contact's actor id.
type Entry struct {
	ID          string    `json:"id"`
	Anonymous   bool      `json:"anonymous"`
	HideFrom    bool      `json:"hideFrom"` // reserved, not yet enforced
	Members     []string  `json:"members"`  // reserved for group contacts, always null
	ChatHistory []Message `json:"chatHistory"`
}

// FlagStore is the host's durable per-entity key-value primitive.
// A nil value from GetFlag means the key is unset.
type FlagStore interface {
	GetFlag(ctx context.Context, entityID, namespace, key string) (json.RawMessage, error)
	SetFlag(ctx context.Context, entityID, namespace, key string, value json.RawMessage) error
	DeleteFlag(ctx context.Context, entityID, namespace, key string) error
}
