package session

import (
	"github.com/robalobadob/boardrules/internal/expr"
	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/piece"
)

// Placed is a piece on the board.
type Placed struct {
	Model piece.Model `json:"model"`
	Color piece.Color `json:"color"`
	Pos   geom.Pos    `json:"pos"`
}

// Board indexes placed pieces by tile.
type Board struct {
	rows, cols int
	tiles      map[geom.Pos]Placed
}

func newBoard(rows, cols int) *Board {
	return &Board{rows: rows, cols: cols, tiles: make(map[geom.Pos]Placed)}
}

func (b *Board) Rows() int { return b.rows }
func (b *Board) Cols() int { return b.cols }

// Contains reports whether p is on the board.
func (b *Board) Contains(p geom.Pos) bool { return p.InBoard(b.rows, b.cols) }

// At returns the piece on p.
func (b *Board) At(p geom.Pos) (Placed, bool) {
	pc, ok := b.tiles[p]
	return pc, ok
}

// Pieces lists placed pieces in row-major order.
func (b *Board) Pieces() []Placed {
	out := make([]Placed, 0, len(b.tiles))
	for _, p := range geom.Tiles(b.rows, b.cols) {
		if pc, ok := b.tiles[p]; ok {
			out = append(out, pc)
		}
	}
	return out
}

func (b *Board) put(pc Placed) { b.tiles[pc.Pos] = pc }

func (b *Board) remove(p geom.Pos) (Placed, bool) {
	pc, ok := b.tiles[p]
	delete(b.tiles, p)
	return pc, ok
}

func (b *Board) tile(p geom.Pos) (Placed, bool, error) {
	if !b.Contains(p) {
		return Placed{}, false, expr.ErrOutOfBoard
	}
	pc, ok := b.tiles[p]
	return pc, ok, nil
}

func (b *Board) count(r geom.Rect, match func(Placed) bool) int64 {
	var n int64
	for p, pc := range b.tiles {
		if r.Contains(p) && match(pc) {
			n++
		}
	}
	return n
}
