package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Pronana/actor-communicator/internal/alarm"
	"github.com/Pronana/actor-communicator/internal/bus"
	"github.com/Pronana/actor-communicator/internal/config"
	"github.com/Pronana/actor-communicator/internal/contacts"
	"github.com/Pronana/actor-communicator/internal/directory"
	"github.com/Pronana/actor-communicator/internal/lock"
	"github.com/Pronana/actor-communicator/internal/logging"
	"github.com/Pronana/actor-communicator/internal/nav"
	"github.com/Pronana/actor-communicator/internal/relayclient"
	"github.com/Pronana/actor-communicator/internal/router"
	"github.com/Pronana/actor-communicator/internal/session"
	"github.com/Pronana/actor-communicator/internal/socket"
)

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
	Cfg         *config.Config
}

// Module returns the fx module for a session client, composing all
// providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("session",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideRelayClient,
			provideUserSession,
			provideStore,
			provideNav,
			provideAlarm,
			provideSocket,
			provideRouter,
			provideApp,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.SessionName), p.SessionName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	l, err := lock.Acquire(session.Dir(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired", zap.String("session", p.SessionName))
	return l, nil
}

func provideRelayClient(p Params) *relayclient.Client {
	return relayclient.New(p.Cfg.Client.RelayURL)
}

func provideUserSession(p Params, rc *relayclient.Client, logger *zap.Logger) (*directory.UserSession, error) {
	name := p.Cfg.Client.User
	if name == "" {
		return nil, fmt.Errorf("client.user is not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	user, err := rc.ResolveUser(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve user %q: %w", name, err)
	}
	u := directory.User{Name: name}
	if user != nil {
		u = *user
	} else {
		logger.Warn("user not registered with relay, acting unprivileged", zap.String("user", name))
	}
	return directory.NewUserSession(u, rc, p.Cfg.Client.Actor), nil
}

func provideStore(rc *relayclient.Client) *contacts.Store {
	return contacts.NewStore(rc, rc)
}

func provideNav(sess *directory.UserSession, rc *relayclient.Client, b *bus.Bus) *nav.Machine {
	return nav.NewMachine(sess.Privileged, rc, b)
}

func provideAlarm(rc *relayclient.Client, navm *nav.Machine, b *bus.Bus) *alarm.Controller {
	return alarm.NewController(rc, navm.OpenContact, b)
}

func provideSocket(p Params, b *bus.Bus, logger *zap.Logger) *socket.Client {
	return socket.New(p.Cfg.Client.RelayURL, b, logger)
}

func provideRouter(p Params, store *contacts.Store, rc *relayclient.Client, sess *directory.UserSession, sock *socket.Client, al *alarm.Controller, b *bus.Bus, logger *zap.Logger) *router.Router {
	hideAfter := time.Duration(p.Cfg.Client.AlarmHideSeconds) * time.Second
	return router.New(store, rc, sess, sock, al, b, logger, hideAfter)
}

func provideApp(sess *directory.UserSession, rc *relayclient.Client, store *contacts.Store, rt *router.Router, navm *nav.Machine, al *alarm.Controller, b *bus.Bus, logger *zap.Logger) *App {
	return New(sess, rc, store, rt, navm, al, b, logger, os.Stdout)
}

func registerLifecycle(lc fx.Lifecycle, sh fx.Shutdowner, a *App, sock *socket.Client, rt *router.Router, lk *lock.Lock, logger *zap.Logger) {
	runCtx, cancelRun := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			rt.Start(runCtx)
			sock.Start(runCtx)
			go func() {
				if err := a.Run(runCtx, os.Stdin); err != nil && runCtx.Err() == nil {
					logger.Error("command loop ended", zap.Error(err))
				}
				_ = sh.Shutdown()
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelRun()
			sock.Stop()
			rt.Stop()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("session stopped")
			return nil
		},
	})
}
