package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridlockgames/tictactoe-backend/internal/apperror"
	"github.com/gridlockgames/tictactoe-backend/internal/engine"
)

// playMoves applies a scripted sequence of cells, alternating marks
// starting with X, and fails the test on any rejected move.
func playMoves(t *testing.T, game *Game, cells ...int) {
	t.Helper()

	mark := engine.PlayerX
	for _, cell := range cells {
		require.NoError(t, game.ApplyMove(mark, cell))
		mark = engine.ToggleMark(mark)
	}
}

func TestNewGame(t *testing.T) {
	// Given: a fresh game
	game := NewGame("123")

	// Then: the board is empty, X moves first and nothing is scored yet
	expectedGame := &Game{
		ID:     "123",
		Board:  engine.Board{},
		Turn:   engine.PlayerX,
		Status: StatusInProgress,
	}

	require.Equal(t, expectedGame, game)
}

func TestGame_ApplyMove(t *testing.T) {
	t.Run("Successful move flips the turn", func(t *testing.T) {
		// Given: a new game
		game := NewGame("123")

		// When: Player X takes a free cell
		err := game.ApplyMove(engine.PlayerX, 0)
		require.NoError(t, err)

		// Then: the mark lands and the turn passes to O
		expectedGame := &Game{
			ID: "123",
			Board: engine.Board{
				engine.PlayerX, "", "",
				"", "", "",
				"", "", "",
			},
			Turn:   engine.PlayerO,
			Status: StatusInProgress,
		}

		require.Equal(t, expectedGame, game)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: a game where cell 0 is taken by Player X
		game := NewGame("123")
		require.NoError(t, game.ApplyMove(engine.PlayerX, 0))

		// When: Player O goes for the same cell
		err := game.ApplyMove(engine.PlayerO, 0)

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrCellOccupied)

		// And: the game state is unchanged
		expectedGame := &Game{
			ID: "123",
			Board: engine.Board{
				engine.PlayerX, "", "",
				"", "", "",
				"", "", "",
			},
			Turn:   engine.PlayerO,
			Status: StatusInProgress,
		}

		require.Equal(t, expectedGame, game)
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		// Given: a new game, so it is Player X's turn
		game := NewGame("123")

		// When: Player O tries to move first
		err := game.ApplyMove(engine.PlayerO, 1)

		// Then: the move is rejected and nothing changes
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)

		expectedGame := NewGame("123")
		require.Equal(t, expectedGame, game)
	})

	t.Run("Error on invalid cell index (greater than range)", func(t *testing.T) {
		// Given: a new game
		game := NewGame("123")

		// When: a cell outside the board is passed
		err := game.ApplyMove(engine.PlayerX, 20)

		// Then: the move is rejected
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Error on invalid cell index (negative)", func(t *testing.T) {
		// Given: a new game
		game := NewGame("123")

		// When: a negative cell is passed
		err := game.ApplyMove(engine.PlayerX, -1)

		// Then: the move is rejected
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Error on finished game without double-counting", func(t *testing.T) {
		// Given: a game Player X already won
		game := NewGame("123")
		playMoves(t, game, 0, 3, 1, 4, 2)
		require.Equal(t, StatusWon, game.Status)

		// When: another move arrives after the end
		err := game.ApplyMove(engine.PlayerO, 5)

		// Then: it is rejected and the tally is not bumped again
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, Score{Wins: 1}, game.Score)
	})
}

func TestGame_ApplyMove_Outcomes(t *testing.T) {
	t.Run("Player X win finishes the game and scores a win", func(t *testing.T) {
		// Given: a game
		game := NewGame("123")

		// When: X completes the top row
		playMoves(t, game, 0, 3, 1, 4, 2)

		// Then: the game is won by X and the turn is cleared
		assert.Equal(t, StatusWon, game.Status)
		assert.Equal(t, engine.PlayerX, game.Winner)
		assert.Equal(t, engine.EmptyCell, game.Turn)
		assert.Equal(t, Score{Wins: 1}, game.Score)
	})

	t.Run("Player O win finishes the game and scores a loss", func(t *testing.T) {
		// Given: a game
		game := NewGame("123")

		// When: O completes the middle row
		playMoves(t, game, 0, 3, 1, 4, 8, 5)

		// Then: the game is won by O and counted as a loss
		assert.Equal(t, StatusWon, game.Status)
		assert.Equal(t, engine.PlayerO, game.Winner)
		assert.Equal(t, engine.EmptyCell, game.Turn)
		assert.Equal(t, Score{Losses: 1}, game.Score)
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		// Given: a game
		game := NewGame("123")

		// When: nine moves fill the board with no winner
		playMoves(t, game, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// Then: the game is drawn with no winner
		assert.Equal(t, StatusDraw, game.Status)
		assert.Equal(t, engine.EmptyCell, game.Winner)
		assert.Equal(t, engine.EmptyCell, game.Turn)
		assert.Equal(t, Score{Draws: 1}, game.Score)
	})

	t.Run("Winning move on the last free cell is a win, not a draw", func(t *testing.T) {
		// Given: a game
		game := NewGame("123")

		// When: the ninth move both fills the board and completes a column
		playMoves(t, game, 0, 1, 2, 4, 3, 5, 7, 8, 6)

		// Then: the win takes precedence over the draw
		require.True(t, game.Board.IsFull())
		assert.Equal(t, StatusWon, game.Status)
		assert.Equal(t, engine.PlayerX, game.Winner)
		assert.Equal(t, Score{Wins: 1}, game.Score)
	})

	t.Run("Score accumulates across rounds", func(t *testing.T) {
		// Given: a game played to a win, a loss and a draw with resets in between
		game := NewGame("123")

		playMoves(t, game, 0, 3, 1, 4, 2)
		game.Reset()
		playMoves(t, game, 0, 3, 1, 4, 8, 5)
		game.Reset()
		playMoves(t, game, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// Then: every round landed in the tally exactly once
		assert.Equal(t, Score{Wins: 1, Losses: 1, Draws: 1}, game.Score)
	})
}

func TestGame_Reset(t *testing.T) {
	t.Run("Clears the board but keeps the score", func(t *testing.T) {
		// Given: a finished game with one win on the tally
		game := NewGame("123")
		playMoves(t, game, 0, 3, 1, 4, 2)

		// When: resetting the board
		game.Reset()

		// Then: a fresh round starts with the tally intact
		expectedGame := &Game{
			ID:     "123",
			Board:  engine.Board{},
			Turn:   engine.PlayerX,
			Status: StatusInProgress,
			Score:  Score{Wins: 1},
		}

		require.Equal(t, expectedGame, game)
	})

	t.Run("Works mid-game as well", func(t *testing.T) {
		// Given: a game with two moves on the board
		game := NewGame("123")
		playMoves(t, game, 4, 0)

		// When: resetting the board
		game.Reset()

		// Then: the board is empty and X moves first again
		require.Equal(t, NewGame("123"), game)
	})
}

func TestGame_ResetScore(t *testing.T) {
	// Given: a finished game with one win on the tally
	game := NewGame("123")
	playMoves(t, game, 0, 3, 1, 4, 2)

	// When: resetting only the score
	game.ResetScore()

	// Then: the tally is zeroed while the board stays finished
	assert.Equal(t, Score{}, game.Score)
	assert.Equal(t, StatusWon, game.Status)
	assert.Equal(t, engine.PlayerX, game.Winner)
	assert.True(t, game.Board.IsFull() || game.Board.Winner() != engine.EmptyCell)
}

func TestGame_Snapshot(t *testing.T) {
	// Given: a game with one move played
	game := NewGame("123")
	require.NoError(t, game.ApplyMove(engine.PlayerX, 0))

	// When: taking a snapshot and then playing on
	snapshot := game.Snapshot()
	require.NoError(t, game.ApplyMove(engine.PlayerO, 4))

	// Then: the snapshot does not see the later move
	assert.Equal(t, engine.EmptyCell, snapshot.Board[4])
	assert.Equal(t, engine.PlayerO, snapshot.Turn)
	assert.Equal(t, engine.PlayerO, game.Board[4])
	assert.Equal(t, engine.PlayerX, game.Turn)
}
