// Package router builds chat messages, files them durably and decides
// whether they cross sessions. Sending writes the sender's view; the
// receiving session mirrors the message into the recipient's view so
// both parties keep a durable log (dual-write receipt policy).
package router

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Pronana/actor-communicator/internal/bus"
	"github.com/Pronana/actor-communicator/internal/contacts"
	"github.com/Pronana/actor-communicator/internal/directory"
)

// Envelope is the broadcast payload shape shared by all sessions.
type Envelope struct {
	ChatMessage *contacts.Message `json:"chatMessage"`
}

// Broadcaster pushes an envelope onto the shared channel. Delivery is
// fire-and-forget; the transport owns retries, not the router.
type Broadcaster interface {
	Broadcast(ctx context.Context, env Envelope) error
}

// Alarm is the notification surface fed by inbound broadcasts.
type Alarm interface {
	Show(msg contacts.Message, hideAfter time.Duration)
}

// Router routes outbound and inbound chat messages for one session.
type Router struct {
	store     *contacts.Store
	dir       directory.Directory
	sess      *directory.UserSession
	net       Broadcaster
	alarm     Alarm
	bus       *bus.Bus
	logger    *zap.Logger
	hideAfter time.Duration

	cancel context.CancelFunc
}

// New creates a router. hideAfter is the alarm auto-hide duration for
// inbound messages; zero keeps alarms up until acknowledged.
func New(store *contacts.Store, dir directory.Directory, sess *directory.UserSession, net Broadcaster, al Alarm, b *bus.Bus, logger *zap.Logger, hideAfter time.Duration) *Router {
	return &Router{
		store:     store,
		dir:       dir,
		sess:      sess,
		net:       net,
		alarm:     al,
		bus:       b,
		logger:    logger,
		hideAfter: hideAfter,
	}
}

// Send builds a message from sender to recipientID, appends it to the
// sender's own history under the recipient's entry, and broadcasts it
// when the recipient belongs to another connected party. Empty text
// or an unresolvable party is a silent no-op returning (nil, nil).
// The sender must already have the recipient as a contact.
func (r *Router) Send(ctx context.Context, sender *directory.Actor, recipientID, text string) (*contacts.Message, error) {
	if strings.TrimSpace(text) == "" || sender == nil {
		return nil, nil
	}
	recipient, err := r.dir.Resolve(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, nil
	}

	// Unknown-sender is the recipient's perspective, read from the
	// recipient's own store, not the sender's.
	known, err := r.store.Has(ctx, recipient.ID, sender.ID)
	if err != nil {
		return nil, err
	}

	msg := contacts.Message{
		ID:            uuid.NewString(),
		SenderID:      sender.ID,
		RecipientID:   recipient.ID,
		Text:          text,
		UnknownSender: !known,
		SentAt:        time.Now().UnixMilli(),
	}

	if err := r.store.Append(ctx, sender.ID, recipient.ID, msg); err != nil {
		return nil, err
	}
	r.bus.Publish(bus.KindChatUpdated, bus.UpdatedPayload{OwnerID: sender.ID, ContactID: recipient.ID})

	if recipient.Owner != r.sess.User().Name {
		if err := r.net.Broadcast(ctx, Envelope{ChatMessage: &msg}); err != nil {
			// The durable record is already written; a lost broadcast
			// only delays the recipient's notification.
			r.logger.Warn("broadcast failed",
				zap.String("msg_id", msg.ID),
				zap.String("recipient", recipient.ID),
				zap.Error(err))
		}
	}

	return &msg, nil
}

// Start subscribes the inbound handler to socket-delivered messages.
func (r *Router) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	ch, unsub := r.bus.Subscribe(bus.KindChatInbound, 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				msg, ok := evt.Payload.(contacts.Message)
				if !ok {
					continue
				}
				if err := r.HandleInbound(ctx, msg); err != nil {
					r.logger.Error("inbound message failed",
						zap.String("msg_id", msg.ID),
						zap.Error(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the inbound handler.
func (r *Router) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

// HandleInbound processes one broadcast message. The channel delivers
// every message to every session; anything not addressed to the
// locally active actor is dropped here.
func (r *Router) HandleInbound(ctx context.Context, msg contacts.Message) error {
	active := r.sess.ActiveActorID()
	if active == "" || msg.RecipientID != active {
		return nil
	}

	r.alarm.Show(msg, r.hideAfter)

	known, err := r.store.Has(ctx, active, msg.SenderID)
	if err != nil {
		return err
	}
	if !known {
		// First contact from this sender: the entry inherits the
		// message's unknown-sender marker so the UI can withhold the
		// name until the owner confirms them.
		if _, err := r.store.Add(ctx, active, msg.SenderID, msg.UnknownSender); err != nil {
			return err
		}
	}

	if err := r.store.Append(ctx, active, msg.SenderID, msg); err != nil {
		return err
	}
	r.bus.Publish(bus.KindChatUpdated, bus.UpdatedPayload{OwnerID: active, ContactID: msg.SenderID})
	return nil
}
