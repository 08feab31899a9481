package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gridlockgames/tictactoe-backend/internal/apperror"
	"github.com/gridlockgames/tictactoe-backend/internal/entity"
)

// actionGameUpdate carries server-initiated pushes: the delayed opponent
// move and any state change accepted on another transport.
const actionGameUpdate = "game:update"

func (that *Server) handleConnect(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	// Nothing to resume; the client follows up with game:new.
	if payloadReq.GameID == "" {
		return that.sendMessage(conn, msg.Action, Payload{})
	}

	game, err := that.hub.Get(ctx, payloadReq.GameID)
	if err != nil {
		log.Error("failed to get game", "gameID", payloadReq.GameID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "game not found")
	}

	if err = that.watchGame(ctx, conn, game.ID); err != nil {
		log.Error("failed to watch game", "gameID", game.ID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "game not found")
	}

	log.Info("client resumed game", "gameID", game.ID)

	return that.sendMessage(conn, msg.Action, Payload{Game: &game})
}

func (that *Server) handleNewGame(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleNewGame")

	game, err := that.hub.Create(ctx)
	if err != nil {
		log.Error("failed to create game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to create a new game")
	}

	if err = that.watchGame(ctx, conn, game.ID); err != nil {
		return err
	}

	log.Info("game created", "gameID", game.ID)

	return that.sendMessage(conn, msg.Action, Payload{Game: &game})
}

func (that *Server) handleGameState(ctx context.Context, conn *connection, msg *Message) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.GameID == "" {
		return that.sendErrorResponse(conn, msg.Action, "game_id is required")
	}

	game, err := that.hub.Get(ctx, payloadReq.GameID)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, "game not found")
	}

	return that.sendMessage(conn, msg.Action, Payload{Game: &game})
}

func (that *Server) handleGameTurn(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleGameTurn")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.GameID == "" {
		return that.sendErrorResponse(conn, msg.Action, "game_id is required")
	}

	if payloadReq.Cell == nil {
		return that.sendErrorResponse(conn, msg.Action, "cell is required")
	}

	if err = that.watchGame(ctx, conn, payloadReq.GameID); err != nil {
		return that.sendErrorResponse(conn, msg.Action, "game not found")
	}

	game, err := that.hub.PlayerMove(ctx, payloadReq.GameID, *payloadReq.Cell)
	if err != nil {
		if isMoveRejected(err) {
			return that.sendErrorResponse(conn, msg.Action, err.Error())
		}

		log.Error("failed to make turn", "gameID", payloadReq.GameID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to make turn")
	}

	log.Info("player made a turn", "gameID", game.ID, "cell", *payloadReq.Cell)

	return that.sendMessage(conn, msg.Action, Payload{Game: &game})
}

func (that *Server) handleGameReset(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleGameReset")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.GameID == "" {
		return that.sendErrorResponse(conn, msg.Action, "game_id is required")
	}

	if err = that.watchGame(ctx, conn, payloadReq.GameID); err != nil {
		return that.sendErrorResponse(conn, msg.Action, "game not found")
	}

	game, err := that.hub.Reset(ctx, payloadReq.GameID)
	if err != nil {
		log.Error("failed to reset game", "gameID", payloadReq.GameID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to reset game")
	}

	log.Info("game reset", "gameID", game.ID)

	return that.sendMessage(conn, msg.Action, Payload{Game: &game})
}

func (that *Server) handleScoreReset(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleScoreReset")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.GameID == "" {
		return that.sendErrorResponse(conn, msg.Action, "game_id is required")
	}

	game, err := that.hub.ResetScore(ctx, payloadReq.GameID)
	if err != nil {
		log.Error("failed to reset score", "gameID", payloadReq.GameID, "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to reset score")
	}

	log.Info("score reset", "gameID", game.ID)

	return that.sendMessage(conn, msg.Action, Payload{Game: &game})
}

// watchGame points the connection's update pump at gameID. A connection
// watches one session at a time; switching replaces the pump.
func (that *Server) watchGame(ctx context.Context, conn *connection, gameID string) error {
	if conn.gameID == gameID {
		return nil
	}

	updates, unwatch, err := that.hub.Watch(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to watch game: %w", err)
	}

	conn.stopWatch()
	conn.gameID = gameID
	conn.unwatch = unwatch

	go that.pumpUpdates(conn, updates)

	return nil
}

// pumpUpdates pushes accepted state changes to the client until the
// subscription closes.
func (that *Server) pumpUpdates(conn *connection, updates <-chan entity.Game) {
	log := that.logger.With("method", "pumpUpdates")

	for game := range updates {
		if err := that.sendMessage(conn, actionGameUpdate, Payload{Game: &game}); err != nil {
			log.Error("failed to push game update", "gameID", game.ID, "error", err)
			return
		}
	}
}

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

// isMoveRejected separates the client's own mistakes from server faults.
func isMoveRejected(err error) bool {
	return errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrNotYourTurn) ||
		errors.Is(err, apperror.ErrGameFinished) ||
		errors.Is(err, apperror.ErrInvalidCell) ||
		errors.Is(err, apperror.ErrSessionNotFound)
}
