package expr

import (
	"fmt"

	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/piece"
)

// And is true when every operand is; it stops at the first false operand.
type And struct {
	Operands []Bool
}

func (e And) Eval(ctx Context) (bool, error) {
	if len(e.Operands) < 2 {
		return false, ErrAndInvalidArity
	}
	for _, op := range e.Operands {
		v, err := op.Eval(ctx)
		if err != nil {
			return false, err
		}
		if !v {
			return false, nil
		}
	}
	return true, nil
}

func (e And) check(s Scenario) error {
	if len(e.Operands) < 2 {
		return ErrAndInvalidArity
	}
	return checkAll(e.Operands, s)
}

// Or is true when any operand is; it stops at the first true operand.
type Or struct {
	Operands []Bool
}

func (e Or) Eval(ctx Context) (bool, error) {
	if len(e.Operands) < 2 {
		return false, ErrOrInvalidArity
	}
	for _, op := range e.Operands {
		v, err := op.Eval(ctx)
		if err != nil {
			return false, err
		}
		if v {
			return true, nil
		}
	}
	return false, nil
}

func (e Or) check(s Scenario) error {
	if len(e.Operands) < 2 {
		return ErrOrInvalidArity
	}
	return checkAll(e.Operands, s)
}

func checkAll[T any](es []Expr[T], s Scenario) error {
	for _, e := range es {
		if err := Validate(e, s); err != nil {
			return err
		}
	}
	return nil
}

type Not struct {
	Operand Bool
}

func (e Not) Eval(ctx Context) (bool, error) {
	v, err := e.Operand.Eval(ctx)
	if err != nil {
		return false, err
	}
	return !v, nil
}

func (e Not) check(s Scenario) error { return Validate(e.Operand, s) }

// CompareOp is an integer comparison.
type CompareOp uint8

const (
	Equal CompareOp = iota
	NotEqual
	LessThan
	GreaterThan
	LessOrEqual
	GreaterOrEqual
)

// Compare compares two integers.
type Compare struct {
	Op    CompareOp
	Left  Int
	Right Int
}

func (e Compare) Eval(ctx Context) (bool, error) {
	l, err := e.Left.Eval(ctx)
	if err != nil {
		return false, err
	}
	r, err := e.Right.Eval(ctx)
	if err != nil {
		return false, err
	}
	switch e.Op {
	case Equal:
		return l == r, nil
	case NotEqual:
		return l != r, nil
	case LessThan:
		return l < r, nil
	case GreaterThan:
		return l > r, nil
	case LessOrEqual:
		return l <= r, nil
	case GreaterOrEqual:
		return l >= r, nil
	}
	return false, fmt.Errorf("unknown comparison %d", e.Op)
}

func (e Compare) check(s Scenario) error {
	if e.Op > GreaterOrEqual {
		return fmt.Errorf("unknown comparison %d", e.Op)
	}
	return checkPair(e.Left, e.Right, s)
}

func checkPair[A, B any](a Expr[A], b Expr[B], s Scenario) error {
	if err := Validate(a, s); err != nil {
		return err
	}
	return Validate(b, s)
}

// ColorEqual compares two colors.
type ColorEqual struct {
	Left  ColorExpr
	Right ColorExpr
}

func (e ColorEqual) Eval(ctx Context) (bool, error) { return evalEqual(ctx, e.Left, e.Right) }
func (e ColorEqual) check(s Scenario) error { return checkPair(e.Left, e.Right, s) }

// ModelEqual compares two models.
type ModelEqual struct {
	Left  ModelExpr
	Right ModelExpr
}

func (e ModelEqual) Eval(ctx Context) (bool, error) { return evalEqual(ctx, e.Left, e.Right) }
func (e ModelEqual) check(s Scenario) error { return checkPair(e.Left, e.Right, s) }

func evalEqual[T comparable](ctx Context, a, b Expr[T]) (bool, error) {
	l, err := a.Eval(ctx)
	if err != nil {
		return false, err
	}
	r, err := b.Eval(ctx)
	if err != nil {
		return false, err
	}
	return l == r, nil
}

// Occupied reports whether a piece stands on (Row, Col).
type Occupied struct {
	Row Int
	Col Int
}

func (e Occupied) Eval(ctx Context) (bool, error) {
	p, err := evalPos(ctx, e.Row, e.Col)
	if err != nil {
		return false, err
	}
	return ctx.Occupied(p)
}

func (e Occupied) check(s Scenario) error { return checkPair(e.Row, e.Col, s) }

// PlayerStateEqual reports whether the player of Color is in State.
type PlayerStateEqual struct {
	Color ColorExpr
	State piece.PlayerState
}

func (e PlayerStateEqual) Eval(ctx Context) (bool, error) {
	c, err := e.Color.Eval(ctx)
	if err != nil {
		return false, err
	}
	st, err := ctx.PlayerState(c)
	if err != nil {
		return false, err
	}
	return st == e.State, nil
}

func (e PlayerStateEqual) check(s Scenario) error {
	if e.State > piece.Lost {
		return fmt.Errorf("unknown player state %d", e.State)
	}
	return Validate(e.Color, s)
}

// BoolVar reads a boolean variable.
type BoolVar struct {
	Var Variable
}

func (e BoolVar) Eval(ctx Context) (bool, error) {
	switch e.Var {
	case VarHasLastAction:
		return ctx.HasLastAction()
	}
	return false, fmt.Errorf("%w: %q is not a boolean variable", ErrUnknownVariable, e.Var)
}

func (e BoolVar) check(s Scenario) error { return checkVar(e.Var, kindBool, s) }

// HasLastAction is true once any piece was placed or moved.
var HasLastAction Bool = BoolVar{Var: VarHasLastAction}

func evalPos(ctx Context, row, col Int) (geom.Pos, error) {
	r, err := row.Eval(ctx)
	if err != nil {
		return geom.Pos{}, err
	}
	c, err := col.Eval(ctx)
	if err != nil {
		return geom.Pos{}, err
	}
	return geom.P(int(r), int(c)), nil
}
