package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gridlockgames/tictactoe-backend/internal/apperror"
)

type turnRequest struct {
	Cell *int `json:"cell"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleCreateGame")

	game, err := that.hub.Create(r.Context())
	if err != nil {
		log.Error("failed to create game", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}

	log.Info("game created", "gameID", game.ID)

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.hub.Get(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeGameError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		that.writeError(w, http.StatusBadRequest, "body must carry a cell index")
		return
	}

	game, err := that.hub.PlayerMove(r.Context(), chi.URLParam(r, "gameID"), *req.Cell)
	if err != nil {
		that.writeGameError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	game, err := that.hub.Reset(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeGameError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleResetScore(w http.ResponseWriter, r *http.Request) {
	game, err := that.hub.ResetScore(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeGameError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

// writeGameError maps the sentinel taxonomy onto HTTP statuses.
func (that *Server) writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		that.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperror.ErrInvalidCell):
		that.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrGameFinished):
		that.writeError(w, http.StatusConflict, err.Error())
	default:
		that.logger.Error("unexpected error", "error", err)
		that.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, status int, msg string) {
	that.writeJSON(w, status, errorResponse{Error: msg})
}
