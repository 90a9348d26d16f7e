package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Pronana/actor-communicator/internal/config"
	"github.com/Pronana/actor-communicator/internal/contacts"
	"github.com/Pronana/actor-communicator/internal/directory"
	"github.com/Pronana/actor-communicator/internal/session"
	"github.com/Pronana/actor-communicator/internal/world"
)

// accomctl administers the world database directly. Run it while the
// relay is stopped; sqlite locking keeps concurrent writers out.
func main() {
	dbFlag := flag.String("db", "", "world database path (overrides config)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	dbPath := cfg.Relay.WorldDB
	if *dbFlag != "" {
		dbPath = *dbFlag
	}
	if dbPath == "" {
		dbPath = session.WorldDBPath()
	}

	db, err := world.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot open world db %q: %v\n", dbPath, err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	if _, err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: migrate: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch args[0] {
	case "actor":
		cmdActor(ctx, db, args[1:], *jsonFlag)
	case "user":
		cmdUser(ctx, db, args[1:], *jsonFlag)
	case "reset":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: accomctl reset <actor-id>")
			os.Exit(1)
		}
		cmdReset(ctx, db, args[1])
	case "contacts":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: accomctl contacts <actor-id>")
			os.Exit(1)
		}
		cmdContacts(ctx, db, args[1], *jsonFlag)
	case "history":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: accomctl history <actor-id> <contact-id>")
			os.Exit(1)
		}
		cmdHistory(ctx, db, args[1], args[2], *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: accomctl [--db <path>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  actor add <id> <name> <owner>   Create or update an actor")
	fmt.Fprintln(os.Stderr, "  actor list                      List actors")
	fmt.Fprintln(os.Stderr, "  actor rm <id>                   Delete an actor")
	fmt.Fprintln(os.Stderr, "  user add <name> [gm]            Create or update a user")
	fmt.Fprintln(os.Stderr, "  user list                       List users")
	fmt.Fprintln(os.Stderr, "  reset <actor-id>                Clear an actor's contacts and history")
	fmt.Fprintln(os.Stderr, "  contacts <actor-id>             Show an actor's contact entries")
	fmt.Fprintln(os.Stderr, "  history <actor-id> <contact-id> Show one conversation")
}

func cmdActor(ctx context.Context, db *world.DB, args []string, jsonOut bool) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: accomctl actor <add|list|rm>")
		os.Exit(1)
	}
	switch args[0] {
	case "add":
		if len(args) < 4 {
			fmt.Fprintln(os.Stderr, "usage: accomctl actor add <id> <name> <owner>")
			os.Exit(1)
		}
		a := directory.Actor{ID: args[1], Name: args[2], Owner: args[3]}
		if err := db.UpsertActor(ctx, &a); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("actor %s (%s) owned by %s\n", a.ID, a.Name, a.Owner)
	case "list":
		actors, err := db.ListActors(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if jsonOut {
			outputJSON(actors)
			return
		}
		if len(actors) == 0 {
			fmt.Println("no actors")
			return
		}
		for _, a := range actors {
			fmt.Printf("%-24s %-24s owner=%s\n", a.ID, a.Name, a.Owner)
		}
	case "rm":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: accomctl actor rm <id>")
			os.Exit(1)
		}
		if err := db.DeleteActor(ctx, args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("actor %s removed\n", args[1])
	default:
		fmt.Fprintf(os.Stderr, "unknown actor subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func cmdUser(ctx context.Context, db *world.DB, args []string, jsonOut bool) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: accomctl user <add|list>")
		os.Exit(1)
	}
	switch args[0] {
	case "add":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: accomctl user add <name> [gm]")
			os.Exit(1)
		}
		u := directory.User{Name: args[1], Privileged: len(args) > 2 && args[2] == "gm"}
		if err := db.UpsertUser(ctx, &u); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		role := "player"
		if u.Privileged {
			role = "gm"
		}
		fmt.Printf("user %s (%s)\n", u.Name, role)
	case "list":
		users, err := db.ListUsers(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if jsonOut {
			outputJSON(users)
			return
		}
		if len(users) == 0 {
			fmt.Println("no users")
			return
		}
		for _, u := range users {
			role := "player"
			if u.Privileged {
				role = "gm"
			}
			fmt.Printf("%-24s %s\n", u.Name, role)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown user subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func cmdReset(ctx context.Context, db *world.DB, actorID string) {
	store := contacts.NewStore(db, world.Directory{DB: db})
	if err := store.ResetAll(ctx, actorID); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("contacts and chat history cleared for %s\n", actorID)
}

func cmdContacts(ctx context.Context, db *world.DB, actorID string, jsonOut bool) {
	store := contacts.NewStore(db, world.Directory{DB: db})
	entries, err := store.List(ctx, actorID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(entries)
		return
	}
	if len(entries) == 0 {
		fmt.Println("no contacts")
		return
	}
	for _, e := range entries {
		marker := ""
		if e.Anonymous {
			marker = " (unknown)"
		}
		fmt.Printf("%-24s%s  %d message(s)\n", e.ID, marker, len(e.ChatHistory))
	}
}

func cmdHistory(ctx context.Context, db *world.DB, actorID, contactID string, jsonOut bool) {
	store := contacts.NewStore(db, world.Directory{DB: db})
	history, err := store.History(ctx, actorID, contactID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if jsonOut {
		outputJSON(history)
		return
	}
	for _, m := range history {
		at := time.UnixMilli(m.SentAt).Format(time.RFC3339)
		fmt.Printf("[%s] %s -> %s: %s\n", at, m.SenderID, m.RecipientID, m.Text)
	}
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
