// Package alarm surfaces inbound messages as a transient notification.
// The controller is a two-state machine, idle or showing exactly one
// pending message; a newer message replaces the pending one, nothing
// queues.
package alarm

import (
	"context"
	"sync"
	"time"

	"github.com/Pronana/actor-communicator/internal/bus"
	"github.com/Pronana/actor-communicator/internal/contacts"
)

// OpenFunc deep-links the directory UI to a contact. The navigation
// machine supplies it; the controller never reaches into global state.
type OpenFunc func(ctx context.Context, contactID string) error

// Controller holds at most one pending chat message.
type Controller struct {
	resolver contacts.ActorResolver
	open     OpenFunc
	bus      *bus.Bus

	mu      sync.Mutex
	pending *contacts.Message
	timer   *time.Timer
	gen     uint64 // invalidates timers from replaced alarms
}

// NewController creates an idle controller.
func NewController(resolver contacts.ActorResolver, open OpenFunc, b *bus.Bus) *Controller {
	return &Controller{resolver: resolver, open: open, bus: b}
}

// Show transitions to showing with msg pending. A zero hideAfter
// keeps the alarm up until Dismiss or Acknowledge; otherwise it
// auto-dismisses when the duration elapses. A pending alarm is
// replaced and its timer cancelled.
func (c *Controller) Show(msg contacts.Message, hideAfter time.Duration) {
	c.mu.Lock()
	c.stopTimerLocked()
	cp := msg
	c.pending = &cp
	c.gen++
	if hideAfter > 0 {
		gen := c.gen
		c.timer = time.AfterFunc(hideAfter, func() { c.expire(gen) })
	}
	c.mu.Unlock()

	if c.bus != nil {
		c.bus.Publish(bus.KindAlarmShown, cp)
	}
}

// Pending returns the pending message, or nil when idle.
func (c *Controller) Pending() *contacts.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	cp := *c.pending
	return &cp
}

// Dismiss clears the alarm without navigating. No-op when idle.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return
	}
	c.clearLocked()
	c.mu.Unlock()
	c.publishCleared()
}

// Acknowledge resolves the pending message's sender, opens that
// contact in the directory, and returns to idle. No-op when idle; the
// alarm clears even when the sender no longer resolves.
func (c *Controller) Acknowledge(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return nil
	}
	msg := *c.pending
	c.clearLocked()
	c.mu.Unlock()
	defer c.publishCleared()

	sender, err := c.resolver.Resolve(ctx, msg.SenderID)
	if err != nil {
		return err
	}
	if sender == nil {
		return nil
	}
	return c.open(ctx, sender.ID)
}

func (c *Controller) expire(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.pending == nil {
		c.mu.Unlock()
		return
	}
	c.clearLocked()
	c.mu.Unlock()
	c.publishCleared()
}

func (c *Controller) clearLocked() {
	c.stopTimerLocked()
	c.pending = nil
	c.gen++
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) publishCleared() {
	if c.bus != nil {
		c.bus.Publish(bus.KindAlarmCleared, nil)
	}
}
