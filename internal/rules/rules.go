// internal/rules/rules.go
//
// Declarative game definition.
// Defines:
//   - Board, PieceRules, PlayerRules, InitialPiece: the parts of a rule set.
//   - Pieces, Players: insertion-ordered maps keyed by model / color.
//   - Unchecked: an editable rule set in any state.
//   - Checked: a validated, read-only rule set; the only form a session accepts.
//
// Pieces and Players keep document order and keep duplicate keys so that
// Check can report them. Lookups return the first entry for a key.
package rules

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/boardrules/internal/expr"
	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/piece"
)

const (
	tileSize   = 1.0
	tileHeight = 0.2
)

// Board is the rows × cols playing area.
type Board struct {
	Rows int `yaml:"rows" json:"rows"`
	Cols int `yaml:"cols" json:"cols"`
}

// TileSize is the edge length of one tile in scene units.
func (Board) TileSize() float64 { return tileSize }

// TileHeight is the thickness of one tile in scene units.
func (Board) TileHeight() float64 { return tileHeight }

// Tiles lists every board position in row-major order.
func (b Board) Tiles() []geom.Pos { return geom.Tiles(b.Rows, b.Cols) }

// Contains reports whether p is on the board.
func (b Board) Contains(p geom.Pos) bool { return p.InBoard(b.Rows, b.Cols) }

// PieceRules govern one piece model.
type PieceRules struct {
	Count     piece.Count    `yaml:"count"`
	Movement  expr.Predicate `yaml:"movement"`
	Placement expr.Predicate `yaml:"placement"`
}

// Precedence decides which condition wins when a player's win and lose
// conditions hold at the same time.
type Precedence uint8

const (
	// LoseBeforeWin evaluates the lose condition first; win is not evaluated
	// once lose holds.
	LoseBeforeWin Precedence = iota
	// WinBeforeLose evaluates the win condition first; lose is not evaluated
	// once win holds.
	WinBeforeLose
)

// PlayerRules hold one player's end conditions.
type PlayerRules struct {
	WinCondition  expr.Predicate `yaml:"win_condition"`
	LoseCondition expr.Predicate `yaml:"lose_condition"`
}

// Outcome evaluates the end conditions under LoseBeforeWin.
func (r PlayerRules) Outcome(ctx expr.Context) (piece.PlayerState, error) {
	return r.OutcomeWith(ctx, LoseBeforeWin)
}

// OutcomeWith evaluates the end conditions under the given precedence and
// returns Won, Lost, or Active when neither holds.
func (r PlayerRules) OutcomeWith(ctx expr.Context, p Precedence) (piece.PlayerState, error) {
	first, firstState := r.LoseCondition, piece.Lost
	second, secondState := r.WinCondition, piece.Won
	if p == WinBeforeLose {
		first, firstState, second, secondState = second, secondState, first, firstState
	}
	hit, err := first.Eval(ctx)
	if err != nil {
		return piece.Active, err
	}
	if hit {
		return firstState, nil
	}
	hit, err = second.Eval(ctx)
	if err != nil {
		return piece.Active, err
	}
	if hit {
		return secondState, nil
	}
	return piece.Active, nil
}

// PieceEntry is one model's rules.
type PieceEntry struct {
	Model piece.Model
	Rules PieceRules
}

// Pieces maps models to rules in declaration order.
type Pieces []PieceEntry

// Get returns the first rules declared for m.
func (ps Pieces) Get(m piece.Model) (PieceRules, bool) {
	for _, e := range ps {
		if e.Model == m {
			return e.Rules, true
		}
	}
	return PieceRules{}, false
}

// Models lists the declared models in order.
func (ps Pieces) Models() []piece.Model {
	out := make([]piece.Model, len(ps))
	for i, e := range ps {
		out[i] = e.Model
	}
	return out
}

func (ps Pieces) MarshalYAML() (any, error) {
	return orderedMapping(ps, func(e PieceEntry) (piece.Model, any) { return e.Model, e.Rules })
}

func (ps *Pieces) UnmarshalYAML(n *yaml.Node) error {
	out, err := decodeOrderedMapping(n, func(k piece.Model, v *yaml.Node) (PieceEntry, error) {
		var r PieceRules
		if err := checkKeys(v, "piece "+k.String(), []string{"count"}, "movement", "placement"); err != nil {
			return PieceEntry{}, err
		}
		err := v.Decode(&r)
		return PieceEntry{Model: k, Rules: r}, err
	})
	*ps = out
	return err
}

// PlayerEntry is one color's rules.
type PlayerEntry struct {
	Color piece.Color
	Rules PlayerRules
}

// Players maps colors to rules in declaration (turn) order.
type Players []PlayerEntry

// Get returns the first rules declared for c.
func (ps Players) Get(c piece.Color) (PlayerRules, bool) {
	for _, e := range ps {
		if e.Color == c {
			return e.Rules, true
		}
	}
	return PlayerRules{}, false
}

// Colors lists the declared colors in turn order.
func (ps Players) Colors() []piece.Color {
	out := make([]piece.Color, len(ps))
	for i, e := range ps {
		out[i] = e.Color
	}
	return out
}

func (ps Players) MarshalYAML() (any, error) {
	return orderedMapping(ps, func(e PlayerEntry) (piece.Color, any) { return e.Color, e.Rules })
}

func (ps *Players) UnmarshalYAML(n *yaml.Node) error {
	out, err := decodeOrderedMapping(n, func(k piece.Color, v *yaml.Node) (PlayerEntry, error) {
		var r PlayerRules
		if err := checkKeys(v, "player "+k.String(), nil, "win_condition", "lose_condition"); err != nil {
			return PlayerEntry{}, err
		}
		err := v.Decode(&r)
		return PlayerEntry{Color: k, Rules: r}, err
	})
	*ps = out
	return err
}

// checkKeys rejects unknown keys in the mapping n and requires every key in
// required. Nested decoders do not inherit the document decoder's
// KnownFields setting.
func checkKeys(n *yaml.Node, what string, required []string, optional ...string) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: %s: expected a mapping", n.Line, what)
	}
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if !slices.Contains(required, key.Value) && !slices.Contains(optional, key.Value) {
			return fmt.Errorf("line %d: %s: unknown field %q", key.Line, what, key.Value)
		}
		seen[key.Value] = true
	}
	for _, k := range required {
		if !seen[k] {
			return fmt.Errorf("line %d: %s: missing field %q", n.Line, what, k)
		}
	}
	return nil
}

func orderedMapping[E any, K any](entries []E, split func(E) (K, any)) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		k, v := split(e)
		var kn, vn yaml.Node
		if err := kn.Encode(k); err != nil {
			return nil, err
		}
		if err := vn.Encode(v); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &kn, &vn)
	}
	return n, nil
}

func decodeOrderedMapping[E any, K any](n *yaml.Node, build func(K, *yaml.Node) (E, error)) ([]E, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	out := make([]E, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var k K
		if err := n.Content[i].Decode(&k); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Content[i].Line, err)
		}
		e, err := build(k, n.Content[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// InitialPiece places one piece before the first turn.
type InitialPiece struct {
	Model piece.Model
	Color piece.Color
	Pos   geom.Pos
}

// MarshalYAML writes [model, color, [row, col]].
func (p InitialPiece) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []any{p.Model, p.Color, p.Pos} {
		var c yaml.Node
		if err := c.Encode(v); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &c)
	}
	return n, nil
}

func (p *InitialPiece) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode || len(n.Content) != 3 {
		return fmt.Errorf("line %d: initial piece needs [model, color, [row, col]]", n.Line)
	}
	if err := n.Content[0].Decode(&p.Model); err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	if err := n.Content[1].Decode(&p.Color); err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	return n.Content[2].Decode(&p.Pos)
}

// Layout is the ordered starting configuration.
type Layout []InitialPiece

// Unchecked is a rule set as authored. It may be in any state; call Check to
// obtain a Checked rule set.
type Unchecked struct {
	Name              string         `yaml:"name"`
	Board             Board          `yaml:"board"`
	Pieces            Pieces         `yaml:"pieces"`
	Players           Players        `yaml:"players"`
	InitialLayout     Layout         `yaml:"initial_layout,omitempty"`
	GameOverCondition expr.Predicate `yaml:"game_over_condition"`
}

// Checked is a validated rule set. It exposes read accessors only.
type Checked struct {
	data Unchecked
}

func (c *Checked) Name() string { return c.data.Name }
func (c *Checked) Board() Board { return c.data.Board }
func (c *Checked) Pieces() Pieces { return slices.Clone(c.data.Pieces) }
func (c *Checked) Players() Players { return slices.Clone(c.data.Players) }
func (c *Checked) InitialLayout() Layout { return slices.Clone(c.data.InitialLayout) }
func (c *Checked) GameOverCondition() expr.Predicate { return c.data.GameOverCondition }

// Piece returns the rules for model m.
func (c *Checked) Piece(m piece.Model) (PieceRules, bool) { return c.data.Pieces.Get(m) }

// Player returns the rules for color c.
func (c *Checked) Player(col piece.Color) (PlayerRules, bool) { return c.data.Players.Get(col) }

// Edit returns an independent Unchecked copy for further editing.
func (c *Checked) Edit() *Unchecked {
	u := c.data.clone()
	return &u
}

// clone copies the slices. An empty layout becomes nil; Save omits it.
func (u Unchecked) clone() Unchecked {
	u.Pieces = slices.Clone(u.Pieces)
	u.Players = slices.Clone(u.Players)
	u.InitialLayout = slices.Clone(u.InitialLayout)
	if len(u.InitialLayout) == 0 {
		u.InitialLayout = nil
	}
	return u
}
