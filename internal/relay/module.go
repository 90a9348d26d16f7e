package relay

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Pronana/actor-communicator/internal/logging"
	sessionpkg "github.com/Pronana/actor-communicator/internal/session"
	"github.com/Pronana/actor-communicator/internal/world"
)

// Params holds the resolved relay configuration passed to the fx module.
type Params struct {
	ListenAddr  string
	WorldDBPath string
}

// Module returns the fx module for the relay daemon.
func Module(p Params) fx.Option {
	return fx.Module("relay",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideWorldDB,
			NewHub,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger() (*zap.Logger, error) {
	return logging.New(sessionpkg.RelayLogPath(), "accomd")
}

func provideWorldDB(p Params, logger *zap.Logger) (*world.DB, error) {
	db, err := world.Open(p.WorldDBPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("world db opened", zap.String("path", p.WorldDBPath))
	return db, nil
}

func registerLifecycle(lc fx.Lifecycle, p Params, srv *Server, db *world.DB, logger *zap.Logger) {
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			ln, err := net.Listen("tcp", p.ListenAddr)
			if err != nil {
				return err
			}
			logger.Info("relay listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("relay server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := httpSrv.Shutdown(ctx); err != nil {
				logger.Warn("relay shutdown", zap.Error(err))
			}
			if err := db.Close(); err != nil {
				logger.Warn("world db close", zap.Error(err))
			}
			logger.Info("relay stopped")
			return nil
		},
	})
}
