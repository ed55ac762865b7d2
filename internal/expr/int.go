package expr

import (
	"fmt"
	"math"

	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/piece"
)

// ArithOp is a binary integer operation.
type ArithOp uint8

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
)

// Arith applies Op to Left and Right. Both operands are evaluated before the
// zero-divisor check, so operand errors win over ErrDivisionByZero. Results
// outside int64 fail with ErrIntegerOverflow.
type Arith struct {
	Op    ArithOp
	Left  Int
	Right Int
}

func (e Arith) Eval(ctx Context) (int64, error) {
	l, err := e.Left.Eval(ctx)
	if err != nil {
		return 0, err
	}
	r, err := e.Right.Eval(ctx)
	if err != nil {
		return 0, err
	}
	switch e.Op {
	case Add:
		if r > 0 && l > math.MaxInt64-r || r < 0 && l < math.MinInt64-r {
			return 0, ErrIntegerOverflow
		}
		return l + r, nil
	case Sub:
		if r < 0 && l > math.MaxInt64+r || r > 0 && l < math.MinInt64+r {
			return 0, ErrIntegerOverflow
		}
		return l - r, nil
	case Mul:
		return mul(l, r)
	case Div:
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		if l == math.MinInt64 && r == -1 {
			return 0, ErrIntegerOverflow
		}
		return l / r, nil
	}
	return 0, fmt.Errorf("unknown arithmetic operation %d", e.Op)
}

func mul(l, r int64) (int64, error) {
	if l == 0 || r == 0 {
		return 0, nil
	}
	p := l * r
	if p/r != l || l == -1 && r == math.MinInt64 || r == -1 && l == math.MinInt64 {
		return 0, ErrIntegerOverflow
	}
	return p, nil
}

func (e Arith) check(s Scenario) error {
	if e.Op > Div {
		return fmt.Errorf("unknown arithmetic operation %d", e.Op)
	}
	return checkPair(e.Left, e.Right, s)
}

type Abs struct {
	Operand Int
}

func (e Abs) Eval(ctx Context) (int64, error) {
	v, err := e.Operand.Eval(ctx)
	if err != nil {
		return 0, err
	}
	if v == math.MinInt64 {
		return 0, ErrIntegerOverflow
	}
	if v < 0 {
		return -v, nil
	}
	return v, nil
}

func (e Abs) check(s Scenario) error { return Validate(e.Operand, s) }

// IntVar reads an integer variable.
type IntVar struct {
	Var Variable
}

func (e IntVar) Eval(ctx Context) (int64, error) {
	switch e.Var {
	case VarTurnNumber:
		return ctx.TurnNumber()
	case VarRoundNumber:
		return ctx.RoundNumber()
	case VarLastActionRow, VarLastActionCol:
		return posPart(ctx.LastAction, e.Var == VarLastActionRow)
	case VarSourceRow, VarSourceCol:
		return posPart(ctx.Source, e.Var == VarSourceRow)
	case VarTargetRow, VarTargetCol:
		return posPart(ctx.Target, e.Var == VarTargetRow)
	case VarToPlaceRow, VarToPlaceCol:
		return posPart(ctx.ToPlace, e.Var == VarToPlaceRow)
	}
	return 0, fmt.Errorf("%w: %q is not an integer variable", ErrUnknownVariable, e.Var)
}

func (e IntVar) check(s Scenario) error { return checkVar(e.Var, kindInt, s) }

func posPart(query func() (geom.Pos, error), row bool) (int64, error) {
	p, err := query()
	if err != nil {
		return 0, err
	}
	if row {
		return int64(p.Row), nil
	}
	return int64(p.Col), nil
}

// Var returns the integer variable v.
func Var(v Variable) Int { return IntVar{Var: v} }

// RectExpr spans the rectangle between (FromRow, FromCol) and (ToRow, ToCol).
type RectExpr struct {
	FromRow, FromCol Int
	ToRow, ToCol     Int
}

func (r RectExpr) eval(ctx Context) (geom.Rect, error) {
	a, err := evalPos(ctx, r.FromRow, r.FromCol)
	if err != nil {
		return geom.Rect{}, err
	}
	b, err := evalPos(ctx, r.ToRow, r.ToCol)
	if err != nil {
		return geom.Rect{}, err
	}
	return geom.NewRect(a, b), nil
}

func (r RectExpr) check(s Scenario) error {
	for _, e := range []Int{r.FromRow, r.FromCol, r.ToRow, r.ToCol} {
		if err := Validate(e, s); err != nil {
			return err
		}
	}
	return nil
}

// RectOf is a literal rectangle between two positions.
func RectOf(a, b geom.Pos) RectExpr {
	return RectExpr{
		FromRow: Const(int64(a.Row)), FromCol: Const(int64(a.Col)),
		ToRow: Const(int64(b.Row)), ToCol: Const(int64(b.Col)),
	}
}

// CountInRect counts the pieces inside Rect.
type CountInRect struct {
	Rect RectExpr
}

func (e CountInRect) Eval(ctx Context) (int64, error) {
	r, err := e.Rect.eval(ctx)
	if err != nil {
		return 0, err
	}
	return ctx.CountInRect(r)
}

func (e CountInRect) check(s Scenario) error { return e.Rect.check(s) }

// CountPieceInRect counts the pieces of one model and color inside Rect.
type CountPieceInRect struct {
	Model ModelExpr
	Color ColorExpr
	Rect  RectExpr
}

func (e CountPieceInRect) Eval(ctx Context) (int64, error) {
	var (
		m   piece.Model
		c   piece.Color
		r   geom.Rect
		err error
	)
	if m, err = e.Model.Eval(ctx); err != nil {
		return 0, err
	}
	if c, err = e.Color.Eval(ctx); err != nil {
		return 0, err
	}
	if r, err = e.Rect.eval(ctx); err != nil {
		return 0, err
	}
	return ctx.CountPieceInRect(m, c, r)
}

func (e CountPieceInRect) check(s Scenario) error {
	if err := checkPair(e.Model, e.Color, s); err != nil {
		return err
	}
	return e.Rect.check(s)
}
