package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"libdb.so/hserve"

	"github.com/gridlockgames/tictactoe-backend/internal/entity"
)

// gameHub is the slice of the session hub the REST API consumes.
type gameHub interface {
	Create(ctx context.Context) (entity.Game, error)
	Get(ctx context.Context, id string) (entity.Game, error)
	PlayerMove(ctx context.Context, id string, cell int) (entity.Game, error)
	Reset(ctx context.Context, id string) (entity.Game, error)
	ResetScore(ctx context.Context, id string) (entity.Game, error)
}

type Server struct {
	logger *slog.Logger
	hub    gameHub
	router chi.Router
}

func New(logger *slog.Logger, hub gameHub) *Server {
	that := &Server{
		logger: logger.With("component", "rest"),
		hub:    hub,
	}

	router := chi.NewRouter()
	router.Get("/ping", that.handlePing)
	router.Route("/api/game", func(r chi.Router) {
		r.Post("/", that.handleCreateGame)
		r.Route("/{gameID}", func(r chi.Router) {
			r.Get("/", that.handleGetGame)
			r.Post("/turn", that.handleTurn)
			r.Post("/reset", that.handleReset)
			r.Post("/score/reset", that.handleResetScore)
		})
	})
	that.router = router

	return that
}

// Handler exposes the route tree; tests mount it directly.
func (that *Server) Handler() http.Handler {
	return that.router
}

// Start - starts the HTTP server and blocks until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	if err := hserve.ListenAndServe(ctx, ":"+port, that.router); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return ctx.Err()
}
