package bus

import "time"

// Event kinds published on the bus. Subscribers filter by namespace
// prefix, so "chat." matches every chat event.
const (
	KindChatInbound  = "chat.inbound"  // payload: contacts.Message, fresh off the wire
	KindChatUpdated  = "chat.updated"  // payload: UpdatedPayload
	KindAlarmShown   = "alarm.shown"   // payload: contacts.Message
	KindAlarmCleared = "alarm.cleared" // payload: nil
	KindNavChanged   = "nav.changed"   // payload: nav.Snapshot
	KindSocketUp     = "socket.up"     // payload: nil
	KindSocketDown   = "socket.down"   // payload: error string
)

// Event is a domain event published on the bus.
type Event struct {
	Kind    string
	At      time.Time
	Payload any
}

// UpdatedPayload identifies the conversation a durable write touched.
type UpdatedPayload struct {
	OwnerID   string
	ContactID string
}
