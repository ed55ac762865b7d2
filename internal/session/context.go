package session

import (
	"github.com/robalobadob/boardrules/internal/expr"
	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/piece"
)

// stateContext answers board and session queries. It is the context for
// win/lose and game-over conditions; the movement and placement contexts
// extend it with their scenario variables.
type stateContext struct {
	expr.Unsupported
	s *Session
}

func (c stateContext) Occupied(p geom.Pos) (bool, error) {
	_, ok, err := c.s.board.tile(p)
	return ok, err
}

func (c stateContext) ColorAt(p geom.Pos) (piece.Color, error) {
	pc, err := c.placed(p)
	return pc.Color, err
}

func (c stateContext) ModelAt(p geom.Pos) (piece.Model, error) {
	pc, err := c.placed(p)
	return pc.Model, err
}

func (c stateContext) placed(p geom.Pos) (Placed, error) {
	pc, ok, err := c.s.board.tile(p)
	if err != nil {
		return Placed{}, err
	}
	if !ok {
		return Placed{}, expr.ErrEmptyTile
	}
	return pc, nil
}

func (c stateContext) CountInRect(r geom.Rect) (int64, error) {
	return c.s.board.count(r, func(Placed) bool { return true }), nil
}

func (c stateContext) CountPieceInRect(m piece.Model, col piece.Color, r geom.Rect) (int64, error) {
	return c.s.board.count(r, func(pc Placed) bool { return pc.Model == m && pc.Color == col }), nil
}

func (c stateContext) TurnNumber() (int64, error) { return c.s.turn.Turn(), nil }
func (c stateContext) RoundNumber() (int64, error) { return c.s.turn.Round(), nil }
func (c stateContext) HasLastAction() (bool, error) { return c.s.hasLast, nil }

func (c stateContext) LastAction() (geom.Pos, error) {
	if !c.s.hasLast {
		return geom.Pos{}, expr.ErrNoLastAction
	}
	return c.s.last, nil
}

func (c stateContext) PlayerState(col piece.Color) (piece.PlayerState, error) {
	p, ok := c.s.players.ByColor(col)
	if !ok {
		return piece.Active, expr.ErrNoSuchColor
	}
	return p.State(), nil
}

// movementContext evaluates a movement rule for one source/target pair.
type movementContext struct {
	stateContext
	mover  Placed
	target geom.Pos
}

func (c movementContext) Source() (geom.Pos, error) { return c.mover.Pos, nil }
func (c movementContext) Target() (geom.Pos, error) { return c.target, nil }
func (c movementContext) MovingColor() (piece.Color, error) { return c.mover.Color, nil }
func (c movementContext) MovingModel() (piece.Model, error) { return c.mover.Model, nil }

// placementContext evaluates a placement rule for one tile.
type placementContext struct {
	stateContext
	color piece.Color
	model piece.Model
	at    geom.Pos
}

func (c placementContext) ToPlace() (geom.Pos, error) { return c.at, nil }
func (c placementContext) ToPlaceColor() (piece.Color, error) { return c.color, nil }
func (c placementContext) ToPlaceModel() (piece.Model, error) { return c.model, nil }
