package session

import "github.com/robalobadob/boardrules/internal/piece"

// TurnController tracks whose turn it is. The zero value is not ready for
// use; start from NewTurnController.
type TurnController struct {
	current int
	turn    int64
	round   int64
}

// NewTurnController starts at player 0, turn 1, round 1.
func NewTurnController() TurnController {
	return TurnController{current: 0, turn: 1, round: 1}
}

func (t *TurnController) Current() int { return t.current }
func (t *TurnController) Turn() int64 { return t.turn }
func (t *TurnController) Round() int64 { return t.round }

// Advance hands the turn to the next Active player after the current one,
// visiting each index at most once. Wrapping to an index at or before the
// current one starts a new round. When nobody is Active it returns
// ErrNoActivePlayer and leaves the controller unchanged.
func (t *TurnController) Advance(states []piece.PlayerState) error {
	n := len(states)
	for step := 1; step <= n; step++ {
		next := (t.current + step) % n
		if states[next] != piece.Active {
			continue
		}
		if next <= t.current {
			t.round++
		}
		t.turn++
		t.current = next
		return nil
	}
	return ErrNoActivePlayer
}
