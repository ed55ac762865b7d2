package session

import (
	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/piece"
)

// CollectMovable lists, in row-major order, every tile the piece on from may
// move to. The source tile is never a candidate. A tile whose movement rule
// fails to evaluate is treated as not movable. An empty source yields nil.
func (s *Session) CollectMovable(from geom.Pos) []geom.Pos {
	mover, ok := s.board.At(from)
	if !ok {
		return nil
	}
	var out []geom.Pos
	for _, to := range geom.Tiles(s.board.rows, s.board.cols) {
		if to == from {
			continue
		}
		ok, err := s.canMove(mover, to)
		if err != nil {
			s.log.Debug().Err(err).Stringer("from", from).Stringer("to", to).Msg("movement rule failed")
			continue
		}
		if ok {
			out = append(out, to)
		}
	}
	return out
}

// CollectPlaceable lists, in row-major order, every empty tile where the
// current player may place model m. A tile whose placement rule fails to
// evaluate is treated as not placeable.
func (s *Session) CollectPlaceable(m piece.Model) []geom.Pos {
	color := s.CurrentPlayer().Color()
	var out []geom.Pos
	for _, at := range geom.Tiles(s.board.rows, s.board.cols) {
		if _, taken := s.board.At(at); taken {
			continue
		}
		ok, err := s.canPlace(color, m, at)
		if err != nil {
			s.log.Debug().Err(err).Stringer("model", m).Stringer("at", at).Msg("placement rule failed")
			continue
		}
		if ok {
			out = append(out, at)
		}
	}
	return out
}

func (s *Session) canMove(mover Placed, to geom.Pos) (bool, error) {
	r, ok := s.rules.Piece(mover.Model)
	if !ok {
		panic("session: placed piece " + mover.Model.String() + " has no rules")
	}
	return r.Movement.Eval(movementContext{stateContext: stateContext{s: s}, mover: mover, target: to})
}

func (s *Session) canPlace(c piece.Color, m piece.Model, at geom.Pos) (bool, error) {
	r, ok := s.rules.Piece(m)
	if !ok {
		return false, errNoSuchModel(m)
	}
	return r.Placement.Eval(placementContext{stateContext: stateContext{s: s}, color: c, model: m, at: at})
}
