package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/gridlockgames/tictactoe-backend/internal/config"
	"github.com/gridlockgames/tictactoe-backend/internal/session"
	"github.com/gridlockgames/tictactoe-backend/transport/rest"
	"github.com/gridlockgames/tictactoe-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opponentDelay, err := conf.Opponent.GetReplyDelay()
	if err != nil {
		return fmt.Errorf("bad config: %w", err)
	}

	sessionTTL, err := conf.Session.GetTTL()
	if err != nil {
		return fmt.Errorf("bad config: %w", err)
	}

	hub := session.NewHub(logger, session.Options{
		OpponentDelay: opponentDelay,
		SessionTTL:    sessionTTL,
		Seed:          conf.Opponent.Seed,
	})

	restServer := rest.New(logger, hub)
	wsServer := websocket.New(logger, hub)

	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		return hub.Start(ctx)
	})

	errg.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		return restServer.Start(ctx, conf.HTTPPort)
	})

	errg.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		return wsServer.Start(ctx, conf.SocketPort)
	})

	if err = errg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("application stopped: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
