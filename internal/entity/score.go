package entity

import "github.com/gridlockgames/tictactoe-backend/internal/engine"

// Score is the session tally, counted from the player's point of view.
// It outlives individual games and resets only on explicit request.
type Score struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

// Record counts one finished game by its winning mark; an empty mark is
// a draw.
func (that *Score) Record(winner string) {
	switch winner {
	case engine.PlayerX:
		that.Wins++
	case engine.PlayerO:
		that.Losses++
	default:
		that.Draws++
	}
}
