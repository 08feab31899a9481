// Package engine holds the tic-tac-toe rules: board evaluation and the
// computer opponent's move selection. It keeps no state of its own.
package engine

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""

	centerCell = 4
)

var (
	// Lines enumerates the eight winning combinations: three rows,
	// three columns, two diagonals.
	Lines = [8][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}

	cornerCells = [4]int{0, 2, 6, 8}
)

// Board is a 3x3 field in row-major order (index = row*3 + column).
// It is a value type, so the helpers below always work on a copy and
// can never mutate a caller's board.
type Board [9]string

// Winner returns the mark occupying a complete line, or EmptyCell when
// no line is complete.
func (that Board) Winner() string {
	for _, line := range Lines {
		a, b, c := that[line[0]], that[line[1]], that[line[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return EmptyCell
}

// IsFull reports whether every cell is occupied. A full board is not
// necessarily a draw: callers check Winner first.
func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// AvailableMoves returns the indices of all empty cells in ascending order.
func (that Board) AvailableMoves() []int {
	moves := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			moves = append(moves, i)
		}
	}

	return moves
}

// ToggleMark returns the mark of the other player.
func ToggleMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
