package engine

import (
	"errors"
	"math/rand"
	"time"
)

var (
	ErrNoAvailableMoves = errors.New("no available moves")
	ErrBoardResolved    = errors.New("board is already resolved")
)

// Selector picks cells for the computer opponent. It plays a fixed
// one-ply policy, not a search: win if possible, block if necessary,
// then prefer center, corners, edges.
type Selector struct {
	mark     string
	opponent string
	rng      *rand.Rand
}

// NewSelector - creates a selector playing the given mark. A nil rng
// falls back to a time-seeded source; tests pass a seeded one.
func NewSelector(mark string, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // move selection needs no crypto randomness
	}

	return &Selector{
		mark:     mark,
		opponent: ToggleMark(mark),
		rng:      rng,
	}
}

func (that *Selector) Mark() string {
	return that.mark
}

// SelectMove returns the cell the opponent plays on the given board.
// The board must still be undecided and have at least one empty cell;
// a resolved or full board is a caller bug and yields an error, never
// a made-up index.
func (that *Selector) SelectMove(board Board) (int, error) {
	if board.Winner() != EmptyCell {
		return 0, ErrBoardResolved
	}

	moves := board.AvailableMoves()
	if len(moves) == 0 {
		return 0, ErrNoAvailableMoves
	}

	// 1. Take the winning cell if one exists.
	if cell, ok := completingMove(board, moves, that.mark); ok {
		return cell, nil
	}

	// 2. Block the player's winning cell.
	if cell, ok := completingMove(board, moves, that.opponent); ok {
		return cell, nil
	}

	// 3. Take the center.
	if board[centerCell] == EmptyCell {
		return centerCell, nil
	}

	// 4. Take a random free corner.
	if corners := freeCorners(board); len(corners) > 0 {
		return corners[that.rng.Intn(len(corners))], nil
	}

	// 5. Take any free cell that is left.
	return moves[that.rng.Intn(len(moves))], nil
}

// completingMove returns the lowest cell whose placement completes a
// line for mark. The board parameter is a copy, so trial placements
// stay local.
func completingMove(board Board, moves []int, mark string) (int, bool) {
	for _, cell := range moves {
		board[cell] = mark
		if board.Winner() == mark {
			return cell, true
		}
		board[cell] = EmptyCell
	}

	return 0, false
}

func freeCorners(board Board) []int {
	corners := make([]int, 0, len(cornerCells))
	for _, cell := range cornerCells {
		if board[cell] == EmptyCell {
			corners = append(corners, cell)
		}
	}

	return corners
}
