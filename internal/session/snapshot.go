package session

import (
	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/piece"
)

// PlayerView is a read-only copy of one player.
type PlayerView struct {
	Color piece.Color       `json:"color"`
	State piece.PlayerState `json:"state"`
	Stock []StockEntry      `json:"stock"`
}

// Snapshot is a read-only copy of the whole session, shaped for JSON.
type Snapshot struct {
	Rules      string        `json:"rules"`
	Rows       int           `json:"rows"`
	Cols       int           `json:"cols"`
	Phase      Phase         `json:"phase"`
	Current    piece.Color   `json:"current"`
	Turn       int64         `json:"turn"`
	Round      int64         `json:"round"`
	LastAction *geom.Pos     `json:"lastAction,omitempty"`
	Players    []PlayerView  `json:"players"`
	Pieces     []Placed      `json:"pieces"`
	Winners    []piece.Color `json:"winners,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Rules:   s.rules.Name(),
		Rows:    s.board.rows,
		Cols:    s.board.cols,
		Phase:   s.phase,
		Current: s.CurrentPlayer().Color(),
		Turn:    s.turn.Turn(),
		Round:   s.turn.Round(),
		Pieces:  s.board.Pieces(),
		Winners: s.Winners(),
	}
	if s.hasLast {
		last := s.last
		snap.LastAction = &last
	}
	for i := 0; i < s.players.Len(); i++ {
		p := s.players.At(i)
		snap.Players = append(snap.Players, PlayerView{Color: p.Color(), State: p.State(), Stock: p.Stock()})
	}
	return snap
}
