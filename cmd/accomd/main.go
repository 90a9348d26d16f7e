package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/fx"

	"github.com/Pronana/actor-communicator/internal/config"
	"github.com/Pronana/actor-communicator/internal/relay"
	"github.com/Pronana/actor-communicator/internal/session"
)

func main() {
	listenFlag := flag.String("listen", "", "listen address (overrides config)")
	dbFlag := flag.String("db", "", "world database path (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	addr := cfg.Relay.ListenAddr
	if *listenFlag != "" {
		addr = *listenFlag
	}
	dbPath := cfg.Relay.WorldDB
	if *dbFlag != "" {
		dbPath = *dbFlag
	}
	if dbPath == "" {
		dbPath = session.WorldDBPath()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		relay.Module(relay.Params{
			ListenAddr:  addr,
			WorldDBPath: dbPath,
		}),
	)

	app.Run()
}
