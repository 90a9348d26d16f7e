package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/Pronana/actor-communicator/internal/app"
	"github.com/Pronana/actor-communicator/internal/config"
	"github.com/Pronana/actor-communicator/internal/session"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	userFlag := flag.String("user", "", "player name (overrides config)")
	actorFlag := flag.String("actor", "", "actor id to control at startup (overrides config)")
	relayFlag := flag.String("relay", "", "relay base URL (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *userFlag != "" {
		cfg.Client.User = *userFlag
	}
	if *actorFlag != "" {
		cfg.Client.Actor = *actorFlag
	}
	if *relayFlag != "" {
		cfg.Client.RelayURL = *relayFlag
	}

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fxApp := fx.New(
		app.Module(app.Params{
			SessionName: sessionName,
			Cfg:         cfg,
		}),
	)

	fxApp.Run()
}
