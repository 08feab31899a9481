package entity

import (
	"fmt"

	"github.com/gridlockgames/tictactoe-backend/internal/apperror"
	"github.com/gridlockgames/tictactoe-backend/internal/engine"
)

const (
	StatusInProgress = "in_progress"
	StatusWon        = "won"
	StatusDraw       = "draw"
)

// Game is one session's board, turn marker and outcome, plus the running
// score. Exactly one status holds at a time; Winner is set only while
// the status is StatusWon.
type Game struct {
	ID     string       `json:"id"`
	Board  engine.Board `json:"board"`
	Turn   string       `json:"turn,omitempty"`
	Status string       `json:"status"`
	Winner string       `json:"winner,omitempty"`
	Score  Score        `json:"score"`
}

// NewGame - creates a game with an empty board and the player (X) to move.
func NewGame(id string) *Game {
	return &Game{
		ID:     id,
		Board:  engine.Board{},
		Turn:   engine.PlayerX,
		Status: StatusInProgress,
	}
}

// ApplyMove places mark on cell and advances the game: the win check
// runs first, the draw check second, and only if the game continues
// does the turn flip. A rejected move leaves the game untouched.
func (that *Game) ApplyMove(mark string, cell int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[cell] != engine.EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that.Board[cell] = mark

	switch winner := that.Board.Winner(); {
	case winner != engine.EmptyCell:
		that.finish(StatusWon, winner)
	case that.Board.IsFull():
		that.finish(StatusDraw, "")
	default:
		that.Turn = engine.ToggleMark(mark)
	}

	return nil
}

// finish latches the terminal state and counts it exactly once.
func (that *Game) finish(status, winner string) {
	that.Status = status
	that.Winner = winner
	that.Turn = ""
	that.Score.Record(winner)
}

// Reset starts a new game in the same session: board, turn and outcome
// return to the initial state while the score carries over.
func (that *Game) Reset() {
	that.Board = engine.Board{}
	that.Turn = engine.PlayerX
	that.Status = StatusInProgress
	that.Winner = ""
}

// ResetScore zeroes the tally without touching the board.
func (that *Game) ResetScore() {
	that.Score = Score{}
}

func (that *Game) IsFinished() bool {
	return that.Status != StatusInProgress
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

// Snapshot returns a value copy for readers outside the session lock.
func (that *Game) Snapshot() Game {
	return *that
}
