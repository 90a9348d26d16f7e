// Package command maps UI action names to handlers. This is the
// whole surface the presentation layer drives; nothing else mutates
// the core.
package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Action names accepted by a session.
const (
	AddContact     = "add-contact"
	RemoveContact  = "remove-contact"
	SendText       = "send-text"
	SelectContact  = "select-contact"
	Navigate       = "navigate"
	ResetAll       = "reset-all"
	AckAlarm       = "acknowledge-alarm"
	DismissAlarm   = "dismiss-alarm"
	Control        = "control"
	ListContacts   = "contacts"
	ShowHistory    = "history"
	ListActors     = "actors"
)

// HandlerFunc handles one action. arg is the raw remainder of the
// input line; handlers split it however they need.
type HandlerFunc func(ctx context.Context, arg string) error

// Dispatcher is an explicit action table. Registration happens during
// wiring; dispatching is read-only after that.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// Register binds an action name to a handler, replacing any previous
// binding.
func (d *Dispatcher) Register(name string, h HandlerFunc) {
	d.handlers[name] = h
}

// Dispatch runs the handler bound to name.
func (d *Dispatcher) Dispatch(ctx context.Context, name, arg string) error {
	h, ok := d.handlers[name]
	if !ok {
		return fmt.Errorf("unknown action %q", name)
	}
	return h(ctx, arg)
}

// Actions returns the registered action names, sorted.
func (d *Dispatcher) Actions() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse splits an input line into an action name and its raw argument.
func Parse(input string) (name, arg string) {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, " ", 2)
	name = strings.ToLower(parts[0])
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}
	return name, arg
}
