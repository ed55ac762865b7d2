package session

import (
	"fmt"
	"slices"

	"github.com/robalobadob/boardrules/internal/piece"
	"github.com/robalobadob/boardrules/internal/rules"
)

// StockEntry is the remaining count of one model for one player.
type StockEntry struct {
	Model piece.Model `json:"model"`
	Count piece.Count `json:"count"`
}

// Player is one participant: a color, its state and its stock in model
// declaration order.
type Player struct {
	color piece.Color
	state piece.PlayerState
	stock []StockEntry
}

func newPlayer(c piece.Color, pieces rules.Pieces) *Player {
	p := &Player{color: c, state: piece.Active, stock: make([]StockEntry, len(pieces))}
	for i, e := range pieces {
		p.stock[i] = StockEntry{Model: e.Model, Count: e.Rules.Count}
	}
	return p
}

func (p *Player) Color() piece.Color { return p.color }
func (p *Player) State() piece.PlayerState { return p.state }
func (p *Player) Stock() []StockEntry { return slices.Clone(p.stock) }

// Remaining returns the stock left for model m.
func (p *Player) Remaining(m piece.Model) (piece.Count, bool) {
	if i := p.stockIndex(m); i >= 0 {
		return p.stock[i].Count, true
	}
	return piece.Count{}, false
}

// DecreaseStock takes one piece of model m, failing with
// piece.ErrCountDepleted when none is left.
func (p *Player) DecreaseStock(m piece.Model) error {
	i := p.stockIndex(m)
	if i < 0 {
		return &rules.NameError{Err: rules.ErrNoSuchModel, Name: m.String()}
	}
	return p.stock[i].Count.Decrease()
}

func (p *Player) increaseStock(m piece.Model) {
	if i := p.stockIndex(m); i >= 0 {
		p.stock[i].Count.Increase()
	}
}

func (p *Player) stockIndex(m piece.Model) int {
	return slices.IndexFunc(p.stock, func(e StockEntry) bool { return e.Model == m })
}

// finish moves an Active player to Won or Lost. Finished players never change.
func (p *Player) finish(s piece.PlayerState) bool {
	if p.state != piece.Active || s == piece.Active {
		return false
	}
	p.state = s
	return true
}

// Players is the turn-ordered player registry.
type Players struct {
	list []*Player
}

func newPlayers(r *rules.Checked) *Players {
	pieces := r.Pieces()
	ps := &Players{}
	for _, e := range r.Players() {
		ps.list = append(ps.list, newPlayer(e.Color, pieces))
	}
	return ps
}

func (ps *Players) Len() int { return len(ps.list) }

// At returns the player with turn index i. An index outside the registry is
// a bookkeeping bug and panics.
func (ps *Players) At(i int) *Player {
	if i < 0 || i >= len(ps.list) {
		panic(fmt.Sprintf("session: player index %d out of range [0,%d)", i, len(ps.list)))
	}
	return ps.list[i]
}

// ByColor returns the player with color c.
func (ps *Players) ByColor(c piece.Color) (*Player, bool) {
	for _, p := range ps.list {
		if p.color == c {
			return p, true
		}
	}
	return nil, false
}

// States lists every player's state in turn order.
func (ps *Players) States() []piece.PlayerState {
	out := make([]piece.PlayerState, len(ps.list))
	for i, p := range ps.list {
		out[i] = p.state
	}
	return out
}
