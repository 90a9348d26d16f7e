// Package app assembles one player session: the durable contact
// store reached through the relay, the message router, the alarm and
// navigation machines, and the command surface that drives them.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Pronana/actor-communicator/internal/alarm"
	"github.com/Pronana/actor-communicator/internal/bus"
	"github.com/Pronana/actor-communicator/internal/command"
	"github.com/Pronana/actor-communicator/internal/contacts"
	"github.com/Pronana/actor-communicator/internal/directory"
	"github.com/Pronana/actor-communicator/internal/nav"
	"github.com/Pronana/actor-communicator/internal/router"
)

// App binds the core components to the command dispatch table.
type App struct {
	sess       *directory.UserSession
	dir        directory.Directory
	store      *contacts.Store
	router     *router.Router
	nav        *nav.Machine
	alarm      *alarm.Controller
	dispatcher *command.Dispatcher
	bus        *bus.Bus
	logger     *zap.Logger
	out        io.Writer
}

// New wires an App and registers every action handler.
func New(sess *directory.UserSession, dir directory.Directory, store *contacts.Store, rt *router.Router, navm *nav.Machine, al *alarm.Controller, b *bus.Bus, logger *zap.Logger, out io.Writer) *App {
	a := &App{
		sess:       sess,
		dir:        dir,
		store:      store,
		router:     rt,
		nav:        navm,
		alarm:      al,
		dispatcher: command.NewDispatcher(),
		bus:        b,
		logger:     logger,
		out:        out,
	}
	a.register()
	return a
}

// Dispatcher exposes the action table, mainly for tests.
func (a *App) Dispatcher() *command.Dispatcher {
	return a.dispatcher
}

func (a *App) register() {
	d := a.dispatcher
	d.Register(command.AddContact, a.cmdAddContact)
	d.Register(command.RemoveContact, a.cmdRemoveContact)
	d.Register(command.SendText, a.cmdSendText)
	d.Register(command.SelectContact, a.cmdSelectContact)
	d.Register(command.Navigate, a.cmdNavigate)
	d.Register(command.ResetAll, a.cmdResetAll)
	d.Register(command.AckAlarm, a.cmdAckAlarm)
	d.Register(command.DismissAlarm, a.cmdDismissAlarm)
	d.Register(command.Control, a.cmdControl)
	d.Register(command.ListContacts, a.cmdListContacts)
	d.Register(command.ShowHistory, a.cmdShowHistory)
	d.Register(command.ListActors, a.cmdListActors)
}

func (a *App) activeActorID() (string, bool) {
	id := a.sess.ActiveActorID()
	if id == "" {
		fmt.Fprintln(a.out, "no active character; use: control <actor-id>")
		return "", false
	}
	return id, true
}

func (a *App) cmdAddContact(ctx context.Context, arg string) error {
	owner, ok := a.activeActorID()
	if !ok || arg == "" {
		return nil
	}
	entry, err := a.store.Add(ctx, owner, arg, false)
	if err != nil {
		return err
	}
	if entry == nil {
		fmt.Fprintln(a.out, "nothing to add")
		return nil
	}
	fmt.Fprintf(a.out, "contact %s added\n", entry.ID)
	return nil
}

func (a *App) cmdRemoveContact(ctx context.Context, arg string) error {
	owner, ok := a.activeActorID()
	if !ok || arg == "" {
		return nil
	}
	if err := a.store.Remove(ctx, owner, arg); err != nil {
		return err
	}
	if a.nav.SelectedContact() == arg {
		a.nav.GoTo(nav.StateContacts)
	}
	fmt.Fprintf(a.out, "contact %s removed\n", arg)
	return nil
}

func (a *App) cmdSendText(ctx context.Context, arg string) error {
	recipientID := a.nav.SelectedContact()
	if recipientID == "" {
		fmt.Fprintln(a.out, "no contact selected; use: select-contact <actor-id>")
		return nil
	}
	sender, err := a.sess.ActiveActor(ctx)
	if err != nil {
		return err
	}
	msg, err := a.router.Send(ctx, sender, recipientID, arg)
	if err != nil {
		return err
	}
	if msg == nil {
		fmt.Fprintln(a.out, "nothing sent")
		return nil
	}
	fmt.Fprintf(a.out, "-> %s: %s\n", recipientID, msg.Text)
	return nil
}

func (a *App) cmdSelectContact(ctx context.Context, arg string) error {
	if err := a.nav.OpenContact(ctx, arg); err != nil {
		return err
	}
	if a.nav.SelectedContact() != arg {
		fmt.Fprintf(a.out, "unknown contact %q\n", arg)
	}
	return nil
}

func (a *App) cmdNavigate(_ context.Context, arg string) error {
	a.nav.GoTo(nav.State(arg))
	return nil
}

func (a *App) cmdResetAll(ctx context.Context, _ string) error {
	owner, ok := a.activeActorID()
	if !ok {
		return nil
	}
	if err := a.store.ResetAll(ctx, owner); err != nil {
		return err
	}
	a.nav.SelectActor()
	fmt.Fprintf(a.out, "all contacts and chat history cleared for %s\n", owner)
	return nil
}

func (a *App) cmdAckAlarm(ctx context.Context, _ string) error {
	return a.alarm.Acknowledge(ctx)
}

func (a *App) cmdDismissAlarm(context.Context, string) error {
	a.alarm.Dismiss()
	return nil
}

func (a *App) cmdControl(ctx context.Context, arg string) error {
	if arg == "" {
		return nil
	}
	actor, err := a.dir.Resolve(ctx, arg)
	if err != nil {
		return err
	}
	if actor == nil {
		fmt.Fprintf(a.out, "unknown actor %q\n", arg)
		return nil
	}
	a.sess.Control(actor.ID)
	a.nav.SelectActor()
	fmt.Fprintf(a.out, "now acting as %s (%s)\n", actor.Name, actor.ID)
	return nil
}

func (a *App) cmdListContacts(ctx context.Context, _ string) error {
	owner, ok := a.activeActorID()
	if !ok {
		return nil
	}
	entries, err := a.store.List(ctx, owner)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "no contacts")
		return nil
	}
	for _, e := range entries {
		name := e.ID
		if actor, err := a.dir.Resolve(ctx, e.ID); err == nil && actor != nil {
			name = actor.Name
		}
		marker := ""
		if e.Anonymous {
			marker = " (unknown)"
		}
		fmt.Fprintf(a.out, "%s  %s%s  %d message(s)\n", e.ID, name, marker, len(e.ChatHistory))
	}
	return nil
}

func (a *App) cmdShowHistory(ctx context.Context, arg string) error {
	owner, ok := a.activeActorID()
	if !ok {
		return nil
	}
	contactID := arg
	if contactID == "" {
		contactID = a.nav.SelectedContact()
	}
	if contactID == "" {
		fmt.Fprintln(a.out, "usage: history <actor-id>")
		return nil
	}
	history, err := a.store.History(ctx, owner, contactID)
	if err != nil {
		return err
	}
	for _, m := range history {
		at := time.UnixMilli(m.SentAt).Format("15:04")
		fmt.Fprintf(a.out, "[%s] %s -> %s: %s\n", at, m.SenderID, m.RecipientID, m.Text)
	}
	return nil
}

func (a *App) cmdListActors(ctx context.Context, _ string) error {
	if !a.nav.Snapshot().ShowActorsButton {
		fmt.Fprintln(a.out, "actor list is GM-only")
		return nil
	}
	actors, err := a.dir.List(ctx)
	if err != nil {
		return err
	}
	for _, actor := range actors {
		fmt.Fprintf(a.out, "%s  %s  owner=%s\n", actor.ID, actor.Name, actor.Owner)
	}
	return nil
}

// Run drives the dispatcher from in, printing inbound notifications
// as they arrive, until in closes or ctx is cancelled.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	events, unsub := a.bus.Subscribe("alarm.", 64)
	defer unsub()
	go func() {
		for {
			select {
			case evt, ok := <-events:
				if !ok {
					return
				}
				if evt.Kind == bus.KindAlarmShown {
					if msg, ok := evt.Payload.(contacts.Message); ok {
						a.printAlarm(ctx, msg)
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintf(a.out, "actor-communicator; actions: %v\n", a.dispatcher.Actions())
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Text()
		name, arg := command.Parse(line)
		if name == "" {
			continue
		}
		if err := a.dispatcher.Dispatch(ctx, name, arg); err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func (a *App) printAlarm(ctx context.Context, msg contacts.Message) {
	from := msg.SenderID
	if msg.UnknownSender {
		from = "unknown caller"
	} else if actor, err := a.dir.Resolve(ctx, msg.SenderID); err == nil && actor != nil {
		from = actor.Name
	}
	fmt.Fprintf(a.out, "\n*** incoming message from %s: %s\n", from, msg.Text)
}
