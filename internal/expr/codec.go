// internal/expr/codec.go
//
// YAML encoding of expression trees.
//
// Scalars carry literals and variables:
//   true | false | 42 | turn_number | red | moving_color | pawn | to_place_model
// Operators are single-key mappings whose value is the operand (or operand list):
//   {and: [a, b, ...]}  {not: a}  {eq: [l, r]}  {if: [cond, then, else]}
//   {occupied: [row, col]}  {color_at: [row, col]}  {player_state: [color, won]}
//   {count_in_rect: [r1, c1, r2, c2]}  {count_piece_in_rect: [model, color, r1, c1, r2, c2]}
//
// Color and model literal names never collide with variable names, so a bare
// scalar is unambiguous for every kind.
package expr

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/boardrules/internal/piece"
)

// Key is an operator name in the document format.
type Key string

const (
	KeyAnd              Key = "and"
	KeyOr               Key = "or"
	KeyNot              Key = "not"
	KeyEq               Key = "eq"
	KeyNe               Key = "ne"
	KeyLt               Key = "lt"
	KeyGt               Key = "gt"
	KeyLe               Key = "le"
	KeyGe               Key = "ge"
	KeyIf               Key = "if"
	KeyColorEq          Key = "color_eq"
	KeyModelEq          Key = "model_eq"
	KeyOccupied         Key = "occupied"
	KeyPlayerState      Key = "player_state"
	KeyAdd              Key = "add"
	KeySub              Key = "sub"
	KeyMul              Key = "mul"
	KeyDiv              Key = "div"
	KeyAbs              Key = "abs"
	KeyCountInRect      Key = "count_in_rect"
	KeyCountPieceInRect Key = "count_piece_in_rect"
	KeyColorAt          Key = "color_at"
	KeyModelAt          Key = "model_at"
)

var compareKeys = [...]Key{KeyEq, KeyNe, KeyLt, KeyGt, KeyLe, KeyGe}
var arithKeys = [...]Key{KeyAdd, KeySub, KeyMul, KeyDiv}

func op(k Key, arg any) (any, error) { return map[string]any{string(k): arg}, nil }

// ---------------------------- encoding --------------------------------------

func (e Lit[T]) MarshalYAML() (any, error) { return e.Value, nil }
func (e If[T]) MarshalYAML() (any, error) { return op(KeyIf, []any{e.Cond, e.Then, e.Else}) }
func (e And) MarshalYAML() (any, error) { return op(KeyAnd, e.Operands) }
func (e Or) MarshalYAML() (any, error) { return op(KeyOr, e.Operands) }
func (e Not) MarshalYAML() (any, error) { return op(KeyNot, e.Operand) }
func (e ColorEqual) MarshalYAML() (any, error) { return op(KeyColorEq, []any{e.Left, e.Right}) }
func (e ModelEqual) MarshalYAML() (any, error) { return op(KeyModelEq, []any{e.Left, e.Right}) }
func (e Occupied) MarshalYAML() (any, error) { return op(KeyOccupied, []any{e.Row, e.Col}) }
func (e BoolVar) MarshalYAML() (any, error) { return string(e.Var), nil }
func (e Abs) MarshalYAML() (any, error) { return op(KeyAbs, e.Operand) }
func (e IntVar) MarshalYAML() (any, error) { return string(e.Var), nil }
func (e CountInRect) MarshalYAML() (any, error) { return op(KeyCountInRect, e.Rect.list()) }
func (e ColorAt) MarshalYAML() (any, error) { return op(KeyColorAt, []any{e.Row, e.Col}) }
func (e ModelAt) MarshalYAML() (any, error) { return op(KeyModelAt, []any{e.Row, e.Col}) }
func (e ColorVar) MarshalYAML() (any, error) { return string(e.Var), nil }
func (e ModelVar) MarshalYAML() (any, error) { return string(e.Var), nil }

func (e Compare) MarshalYAML() (any, error) {
	if int(e.Op) >= len(compareKeys) {
		return nil, fmt.Errorf("unknown comparison %d", e.Op)
	}
	return op(compareKeys[e.Op], []any{e.Left, e.Right})
}

func (e Arith) MarshalYAML() (any, error) {
	if int(e.Op) >= len(arithKeys) {
		return nil, fmt.Errorf("unknown arithmetic operation %d", e.Op)
	}
	return op(arithKeys[e.Op], []any{e.Left, e.Right})
}

func (e PlayerStateEqual) MarshalYAML() (any, error) {
	return op(KeyPlayerState, []any{e.Color, e.State})
}

func (e CountPieceInRect) MarshalYAML() (any, error) {
	return op(KeyCountPieceInRect, append([]any{e.Model, e.Color}, e.Rect.list()...))
}

func (r RectExpr) list() []any { return []any{r.FromRow, r.FromCol, r.ToRow, r.ToCol} }

// Marshal encodes any expression as a YAML fragment.
func Marshal[T any](e Expr[T]) ([]byte, error) {
	if e == nil {
		return nil, ErrMissingExpression
	}
	return yaml.Marshal(e)
}

// ---------------------------- decoding --------------------------------------

// UnmarshalBool decodes a boolean expression fragment.
func UnmarshalBool(data []byte) (Bool, error) { return unmarshalFragment(data, decodeBool) }

// UnmarshalInt decodes an integer expression fragment.
func UnmarshalInt(data []byte) (Int, error) { return unmarshalFragment(data, decodeInt) }

// UnmarshalColor decodes a color expression fragment.
func UnmarshalColor(data []byte) (ColorExpr, error) { return unmarshalFragment(data, decodeColor) }

// UnmarshalModel decodes a model expression fragment.
func UnmarshalModel(data []byte) (ModelExpr, error) { return unmarshalFragment(data, decodeModel) }

// DecodeBool decodes a boolean expression from an already parsed node.
func DecodeBool(n *yaml.Node) (Bool, error) { return decodeBool(n) }

func unmarshalFragment[T any](data []byte, dec func(*yaml.Node) (Expr[T], error)) (Expr[T], error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return dec(&n)
}

func resolve(n *yaml.Node) (*yaml.Node, error) {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil, ErrMissingExpression
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			if n.ShortTag() == "!!null" {
				return nil, fmt.Errorf("line %d: %w", n.Line, ErrMissingExpression)
			}
			return n, nil
		}
	}
	return nil, ErrMissingExpression
}

// operator splits a single-key mapping into its key and operand node.
func operator(n *yaml.Node) (Key, *yaml.Node, error) {
	if len(n.Content) != 2 {
		return "", nil, fmt.Errorf("line %d: operator mapping needs exactly one key, got %d", n.Line, len(n.Content)/2)
	}
	return Key(n.Content[0].Value), n.Content[1], nil
}

func operands(k Key, n *yaml.Node, want int) ([]*yaml.Node, error) {
	n, err := resolve(n)
	if err != nil {
		return nil, err
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: %s needs a list of operands", n.Line, k)
	}
	if want >= 0 && len(n.Content) != want {
		return nil, fmt.Errorf("line %d: %s needs %d operands, got %d", n.Line, k, want, len(n.Content))
	}
	return n.Content, nil
}

func decodeList[T any](ns []*yaml.Node, dec func(*yaml.Node) (Expr[T], error)) ([]Expr[T], error) {
	out := make([]Expr[T], 0, len(ns))
	for _, n := range ns {
		e, err := dec(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeIf[T any](arg *yaml.Node, dec func(*yaml.Node) (Expr[T], error)) (Expr[T], error) {
	args, err := operands(KeyIf, arg, 3)
	if err != nil {
		return nil, err
	}
	cond, err := decodeBool(args[0])
	if err != nil {
		return nil, err
	}
	then, err := dec(args[1])
	if err != nil {
		return nil, err
	}
	els, err := dec(args[2])
	if err != nil {
		return nil, err
	}
	return If[T]{Cond: cond, Then: then, Else: els}, nil
}

func decodePair[A, B any](k Key, arg *yaml.Node, da func(*yaml.Node) (Expr[A], error), db func(*yaml.Node) (Expr[B], error)) (Expr[A], Expr[B], error) {
	args, err := operands(k, arg, 2)
	if err != nil {
		return nil, nil, err
	}
	a, err := da(args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := db(args[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func decodeRect(ns []*yaml.Node) (RectExpr, error) {
	ints, err := decodeList(ns, decodeInt)
	if err != nil {
		return RectExpr{}, err
	}
	return RectExpr{FromRow: ints[0], FromCol: ints[1], ToRow: ints[2], ToCol: ints[3]}, nil
}

func scalarVar(n *yaml.Node, want kind) (Variable, bool) {
	v := Variable(n.Value)
	k, ok := variableKinds[v]
	return v, ok && k == want
}

func decodeBool(n *yaml.Node) (Bool, error) {
	n, err := resolve(n)
	if err != nil {
		return nil, err
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!bool" {
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, err
			}
			return Lit[bool]{Value: b}, nil
		}
		if v, ok := scalarVar(n, kindBool); ok {
			return BoolVar{Var: v}, nil
		}
		return nil, fmt.Errorf("line %d: %w: %q is not a boolean", n.Line, ErrUnknownVariable, n.Value)
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("line %d: expected a boolean expression", n.Line)
	}

	k, arg, err := operator(n)
	if err != nil {
		return nil, err
	}
	switch k {
	case KeyAnd, KeyOr:
		args, err := operands(k, arg, -1)
		if err != nil {
			return nil, err
		}
		list, err := decodeList(args, decodeBool)
		if err != nil {
			return nil, err
		}
		if k == KeyAnd {
			return And{Operands: list}, nil
		}
		return Or{Operands: list}, nil
	case KeyNot:
		inner, err := decodeBool(arg)
		if err != nil {
			return nil, err
		}
		return Not{Operand: inner}, nil
	case KeyEq, KeyNe, KeyLt, KeyGt, KeyLe, KeyGe:
		l, r, err := decodePair(k, arg, decodeInt, decodeInt)
		if err != nil {
			return nil, err
		}
		for i, ck := range compareKeys {
			if ck == k {
				return Compare{Op: CompareOp(i), Left: l, Right: r}, nil
			}
		}
	case KeyIf:
		return decodeIf(arg, decodeBool)
	case KeyColorEq:
		l, r, err := decodePair(k, arg, decodeColor, decodeColor)
		if err != nil {
			return nil, err
		}
		return ColorEqual{Left: l, Right: r}, nil
	case KeyModelEq:
		l, r, err := decodePair(k, arg, decodeModel, decodeModel)
		if err != nil {
			return nil, err
		}
		return ModelEqual{Left: l, Right: r}, nil
	case KeyOccupied:
		row, col, err := decodePair(k, arg, decodeInt, decodeInt)
		if err != nil {
			return nil, err
		}
		return Occupied{Row: row, Col: col}, nil
	case KeyPlayerState:
		args, err := operands(k, arg, 2)
		if err != nil {
			return nil, err
		}
		c, err := decodeColor(args[0])
		if err != nil {
			return nil, err
		}
		var st piece.PlayerState
		if err := args[1].Decode(&st); err != nil {
			return nil, fmt.Errorf("line %d: %w", args[1].Line, err)
		}
		return PlayerStateEqual{Color: c, State: st}, nil
	}
	return nil, fmt.Errorf("line %d: unknown boolean operator %q", n.Line, k)
}

func decodeInt(n *yaml.Node) (Int, error) {
	n, err := resolve(n)
	if err != nil {
		return nil, err
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!int" {
			var v int64
			if err := n.Decode(&v); err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return Lit[int64]{Value: v}, nil
		}
		if v, ok := scalarVar(n, kindInt); ok {
			return IntVar{Var: v}, nil
		}
		return nil, fmt.Errorf("line %d: %w: %q is not an integer", n.Line, ErrUnknownVariable, n.Value)
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("line %d: expected an integer expression", n.Line)
	}

	k, arg, err := operator(n)
	if err != nil {
		return nil, err
	}
	switch k {
	case KeyAdd, KeySub, KeyMul, KeyDiv:
		l, r, err := decodePair(k, arg, decodeInt, decodeInt)
		if err != nil {
			return nil, err
		}
		for i, ak := range arithKeys {
			if ak == k {
				return Arith{Op: ArithOp(i), Left: l, Right: r}, nil
			}
		}
	case KeyAbs:
		inner, err := decodeInt(arg)
		if err != nil {
			return nil, err
		}
		return Abs{Operand: inner}, nil
	case KeyIf:
		return decodeIf(arg, decodeInt)
	case KeyCountInRect:
		args, err := operands(k, arg, 4)
		if err != nil {
			return nil, err
		}
		r, err := decodeRect(args)
		if err != nil {
			return nil, err
		}
		return CountInRect{Rect: r}, nil
	case KeyCountPieceInRect:
		args, err := operands(k, arg, 6)
		if err != nil {
			return nil, err
		}
		m, err := decodeModel(args[0])
		if err != nil {
			return nil, err
		}
		c, err := decodeColor(args[1])
		if err != nil {
			return nil, err
		}
		r, err := decodeRect(args[2:])
		if err != nil {
			return nil, err
		}
		return CountPieceInRect{Model: m, Color: c, Rect: r}, nil
	}
	return nil, fmt.Errorf("line %d: unknown integer operator %q", n.Line, k)
}

func decodeColor(n *yaml.Node) (ColorExpr, error) {
	n, err := resolve(n)
	if err != nil {
		return nil, err
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if v, ok := scalarVar(n, kindColor); ok {
			return ColorVar{Var: v}, nil
		}
		if c, ok := piece.ParseColor(n.Value); ok {
			return Lit[piece.Color]{Value: c}, nil
		}
		return nil, fmt.Errorf("line %d: %q is not a color", n.Line, n.Value)
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("line %d: expected a color expression", n.Line)
	}

	k, arg, err := operator(n)
	if err != nil {
		return nil, err
	}
	switch k {
	case KeyIf:
		return decodeIf(arg, decodeColor)
	case KeyColorAt:
		row, col, err := decodePair(k, arg, decodeInt, decodeInt)
		if err != nil {
			return nil, err
		}
		return ColorAt{Row: row, Col: col}, nil
	}
	return nil, fmt.Errorf("line %d: unknown color operator %q", n.Line, k)
}

func decodeModel(n *yaml.Node) (ModelExpr, error) {
	n, err := resolve(n)
	if err != nil {
		return nil, err
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if v, ok := scalarVar(n, kindModel); ok {
			return ModelVar{Var: v}, nil
		}
		if m, ok := piece.ParseModel(n.Value); ok {
			return Lit[piece.Model]{Value: m}, nil
		}
		return nil, fmt.Errorf("line %d: %q is not a model", n.Line, n.Value)
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("line %d: expected a model expression", n.Line)
	}

	k, arg, err := operator(n)
	if err != nil {
		return nil, err
	}
	switch k {
	case KeyIf:
		return decodeIf(arg, decodeModel)
	case KeyModelAt:
		row, col, err := decodePair(k, arg, decodeInt, decodeInt)
		if err != nil {
			return nil, err
		}
		return ModelAt{Row: row, Col: col}, nil
	}
	return nil, fmt.Errorf("line %d: unknown model operator %q", n.Line, k)
}

// ---------------------------- predicate -------------------------------------

// Predicate is a document-level boolean condition: a movement or placement
// rule, a win/lose condition, or the game-over condition.
type Predicate struct {
	Expr Bool
}

// When wraps e as a Predicate.
func When(e Bool) Predicate { return Predicate{Expr: e} }

func (p Predicate) Eval(ctx Context) (bool, error) {
	if p.Expr == nil {
		return false, ErrMissingExpression
	}
	return p.Expr.Eval(ctx)
}

// Validate checks the predicate for scenario s.
func (p Predicate) Validate(s Scenario) error { return Validate(p.Expr, s) }

func (p Predicate) MarshalYAML() (any, error) {
	if p.Expr == nil {
		return nil, nil
	}
	return p.Expr, nil
}

func (p *Predicate) UnmarshalYAML(n *yaml.Node) error {
	e, err := decodeBool(n)
	if err != nil {
		return err
	}
	p.Expr = e
	return nil
}
