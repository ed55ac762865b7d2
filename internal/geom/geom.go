// internal/geom/geom.go
//
// Board coordinates.
// Defines:
//   - Pos: an immutable (row, col) tile address with a total order.
//   - Rect: an axis-aligned rectangle normalized from two corners.
//
// Positions are encoded in rule documents as a two-element flow sequence: [row, col].
package geom

import (
	"cmp"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Pos is a board tile address. Row 0 / Col 0 is the top-left tile.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// P is shorthand for Pos{Row: row, Col: col}.
func P(row, col int) Pos { return Pos{Row: row, Col: col} }

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// Compare orders positions row-major: first by Row, then by Col.
func (p Pos) Compare(o Pos) int {
	if c := cmp.Compare(p.Row, o.Row); c != 0 {
		return c
	}
	return cmp.Compare(p.Col, o.Col)
}

// Less reports whether p sorts before o.
func (p Pos) Less(o Pos) bool { return p.Compare(o) < 0 }

// InBoard reports whether p lies inside [0,rows) × [0,cols).
func (p Pos) InBoard(rows, cols int) bool {
	return p.Row >= 0 && p.Row < rows && p.Col >= 0 && p.Col < cols
}

// MarshalYAML writes [row, col] in flow style.
func (p Pos) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	n.Content = []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(p.Row)},
		{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(p.Col)},
	}
	return n, nil
}

// UnmarshalYAML reads [row, col].
func (p *Pos) UnmarshalYAML(n *yaml.Node) error {
	var pair []int
	if err := n.Decode(&pair); err != nil {
		return fmt.Errorf("line %d: position: %w", n.Line, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("line %d: position needs [row, col], got %d values", n.Line, len(pair))
	}
	p.Row, p.Col = pair[0], pair[1]
	return nil
}

// SortPositions sorts in place using Pos.Compare and returns the slice.
func SortPositions(ps []Pos) []Pos {
	slices.SortFunc(ps, Pos.Compare)
	return ps
}

// Rect is an inclusive, normalized rectangle.
type Rect struct {
	RowMin, ColMin int
	RowMax, ColMax int
}

// NewRect builds the rectangle spanned by two corners in any order.
func NewRect(a, b Pos) Rect {
	return Rect{
		RowMin: min(a.Row, b.Row),
		ColMin: min(a.Col, b.Col),
		RowMax: max(a.Row, b.Row),
		ColMax: max(a.Col, b.Col),
	}
}

// Contains is inclusive on all four bounds.
func (r Rect) Contains(p Pos) bool {
	return p.Row >= r.RowMin && p.Row <= r.RowMax && p.Col >= r.ColMin && p.Col <= r.ColMax
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d..%d]x[%d..%d]", r.RowMin, r.RowMax, r.ColMin, r.ColMax)
}

// Tiles enumerates every position of a rows×cols board in row-major order.
func Tiles(rows, cols int) []Pos {
	if rows <= 0 || cols <= 0 {
		return nil
	}
	out := make([]Pos, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, Pos{Row: r, Col: c})
		}
	}
	return out
}
