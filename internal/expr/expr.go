// internal/expr/expr.go
//
// Typed expression trees for rule documents.
// Defines:
//   - Expr[T]: the sealed expression interface; Bool, Int, ColorExpr, ModelExpr
//     are its four instantiations.
//   - Context: the query surface an expression evaluates against.
//   - Scenario: the evaluation site (movement, placement, win/lose, game over)
//     and the scenario variables it admits.
//
// Evaluation is pure: expressions never mutate themselves or the context, and
// an expression reaches board or session state only through Context.
package expr

import (
	"errors"
	"fmt"

	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/piece"
)

var (
	ErrDivisionByZero      = errors.New("division by zero")
	ErrIntegerOverflow     = errors.New("integer overflow")
	ErrUnsupportedVariable = errors.New("unsupported variable")
	ErrUnknownVariable     = errors.New("unknown variable")
	ErrAndInvalidArity     = errors.New("and needs at least two operands")
	ErrOrInvalidArity      = errors.New("or needs at least two operands")
	ErrMissingExpression   = errors.New("missing expression")
	ErrEmptyTile           = errors.New("no piece on tile")
	ErrOutOfBoard          = errors.New("position outside the board")
	ErrNoLastAction        = errors.New("no action taken yet")
	ErrNoSuchColor         = errors.New("no player with this color")
)

// Expr is an expression producing a T. The unexported method seals the set of
// node types to this package.
type Expr[T any] interface {
	Eval(ctx Context) (T, error)
	check(s Scenario) error
}

type (
	Bool      = Expr[bool]
	Int       = Expr[int64]
	ColorExpr = Expr[piece.Color]
	ModelExpr = Expr[piece.Model]
)

// Context answers the questions an expression may ask. Each evaluation site
// supplies its own implementation; queries that make no sense at that site
// fail with ErrUnsupportedVariable.
type Context interface {
	Occupied(p geom.Pos) (bool, error)
	ColorAt(p geom.Pos) (piece.Color, error)
	ModelAt(p geom.Pos) (piece.Model, error)
	CountInRect(r geom.Rect) (int64, error)
	CountPieceInRect(m piece.Model, c piece.Color, r geom.Rect) (int64, error)

	TurnNumber() (int64, error)
	RoundNumber() (int64, error)
	HasLastAction() (bool, error)
	LastAction() (geom.Pos, error)
	PlayerState(c piece.Color) (piece.PlayerState, error)

	Source() (geom.Pos, error)
	Target() (geom.Pos, error)
	MovingColor() (piece.Color, error)
	MovingModel() (piece.Model, error)

	ToPlace() (geom.Pos, error)
	ToPlaceColor() (piece.Color, error)
	ToPlaceModel() (piece.Model, error)
}

// Unsupported answers every Context query with ErrUnsupportedVariable.
// Concrete contexts embed it and override what their scenario provides.
type Unsupported struct{}

func unsupported(what string) error { return fmt.Errorf("%w: %s", ErrUnsupportedVariable, what) }

func (Unsupported) Occupied(geom.Pos) (bool, error) { return false, unsupported("occupied") }
func (Unsupported) ColorAt(geom.Pos) (piece.Color, error) { return 0, unsupported("color_at") }
func (Unsupported) ModelAt(geom.Pos) (piece.Model, error) { return 0, unsupported("model_at") }
func (Unsupported) CountInRect(geom.Rect) (int64, error) { return 0, unsupported("count_in_rect") }
func (Unsupported) TurnNumber() (int64, error) { return 0, unsupported(string(VarTurnNumber)) }
func (Unsupported) RoundNumber() (int64, error) { return 0, unsupported(string(VarRoundNumber)) }
func (Unsupported) HasLastAction() (bool, error) { return false, unsupported(string(VarHasLastAction)) }
func (Unsupported) LastAction() (geom.Pos, error) { return geom.Pos{}, unsupported("last_action") }
func (Unsupported) Source() (geom.Pos, error) { return geom.Pos{}, unsupported("source") }
func (Unsupported) Target() (geom.Pos, error) { return geom.Pos{}, unsupported("target") }
func (Unsupported) MovingColor() (piece.Color, error) { return 0, unsupported(string(VarMovingColor)) }
func (Unsupported) MovingModel() (piece.Model, error) { return 0, unsupported(string(VarMovingModel)) }
func (Unsupported) ToPlace() (geom.Pos, error) { return geom.Pos{}, unsupported("to_place") }
func (Unsupported) ToPlaceColor() (piece.Color, error) { return 0, unsupported(string(VarToPlaceColor)) }
func (Unsupported) ToPlaceModel() (piece.Model, error) { return 0, unsupported(string(VarToPlaceModel)) }
func (Unsupported) PlayerState(piece.Color) (piece.PlayerState, error) {
	return 0, unsupported(string(KeyPlayerState))
}
func (Unsupported) CountPieceInRect(piece.Model, piece.Color, geom.Rect) (int64, error) {
	return 0, unsupported(string(KeyCountPieceInRect))
}

// Variable names a scalar query. Board queries that take arguments
// (occupied, color_at, ...) are operators, not variables.
type Variable string

const (
	VarTurnNumber    Variable = "turn_number"
	VarRoundNumber   Variable = "round_number"
	VarHasLastAction Variable = "has_last_action"
	VarLastActionRow Variable = "last_action_row"
	VarLastActionCol Variable = "last_action_col"
	VarSourceRow     Variable = "source_row"
	VarSourceCol     Variable = "source_col"
	VarTargetRow     Variable = "target_row"
	VarTargetCol     Variable = "target_col"
	VarToPlaceRow    Variable = "to_place_row"
	VarToPlaceCol    Variable = "to_place_col"
	VarMovingColor   Variable = "moving_color"
	VarToPlaceColor  Variable = "to_place_color"
	VarMovingModel   Variable = "moving_model"
	VarToPlaceModel  Variable = "to_place_model"
)

type kind uint8

const (
	kindBool kind = iota
	kindInt
	kindColor
	kindModel
)

func (k kind) String() string {
	return [...]string{"boolean", "integer", "color", "model"}[k]
}

var variableKinds = map[Variable]kind{
	VarTurnNumber:    kindInt,
	VarRoundNumber:   kindInt,
	VarHasLastAction: kindBool,
	VarLastActionRow: kindInt,
	VarLastActionCol: kindInt,
	VarSourceRow:     kindInt,
	VarSourceCol:     kindInt,
	VarTargetRow:     kindInt,
	VarTargetCol:     kindInt,
	VarToPlaceRow:    kindInt,
	VarToPlaceCol:    kindInt,
	VarMovingColor:   kindColor,
	VarToPlaceColor:  kindColor,
	VarMovingModel:   kindModel,
	VarToPlaceModel:  kindModel,
}

// Scenario is the site an expression is evaluated at.
type Scenario uint8

const (
	Movement Scenario = iota
	Placement
	WinOrLose
	GameOver
)

func (s Scenario) String() string {
	switch s {
	case Movement:
		return "movement"
	case Placement:
		return "placement"
	case WinOrLose:
		return "win/lose"
	case GameOver:
		return "game over"
	}
	return fmt.Sprintf("scenario(%d)", uint8(s))
}

// Allows reports whether v may appear in an expression evaluated at s.
// Turn, round and last-action variables are available everywhere.
func (s Scenario) Allows(v Variable) bool {
	switch v {
	case VarTurnNumber, VarRoundNumber, VarHasLastAction, VarLastActionRow, VarLastActionCol:
		return true
	case VarSourceRow, VarSourceCol, VarTargetRow, VarTargetCol, VarMovingColor, VarMovingModel:
		return s == Movement
	case VarToPlaceRow, VarToPlaceCol, VarToPlaceColor, VarToPlaceModel:
		return s == Placement
	}
	return false
}

func checkVar(v Variable, want kind, s Scenario) error {
	k, ok := variableKinds[v]
	if !ok || k != want {
		return fmt.Errorf("%w: %q is not a %s variable", ErrUnknownVariable, v, want)
	}
	if !s.Allows(v) {
		return fmt.Errorf("%w: %s is not available in %s conditions", ErrUnsupportedVariable, v, s)
	}
	return nil
}

// Validate checks arity and variable applicability of e for scenario s
// without evaluating it.
func Validate[T any](e Expr[T], s Scenario) error {
	if e == nil {
		return ErrMissingExpression
	}
	return e.check(s)
}

// Lit is a literal of any expression kind.
type Lit[T any] struct {
	Value T
}

func (e Lit[T]) Eval(Context) (T, error) { return e.Value, nil }
func (e Lit[T]) check(Scenario) error    { return nil }

// If evaluates exactly one of Then/Else depending on Cond.
type If[T any] struct {
	Cond Bool
	Then Expr[T]
	Else Expr[T]
}

func (e If[T]) Eval(ctx Context) (T, error) {
	var zero T
	c, err := e.Cond.Eval(ctx)
	if err != nil {
		return zero, err
	}
	if c {
		return e.Then.Eval(ctx)
	}
	return e.Else.Eval(ctx)
}

func (e If[T]) check(s Scenario) error {
	for _, err := range []error{Validate(e.Cond, s), Validate(e.Then, s), Validate(e.Else, s)} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Literal shorthands.
var (
	True  Bool = Lit[bool]{Value: true}
	False Bool = Lit[bool]{Value: false}
)

// Const returns an integer literal.
func Const(n int64) Int { return Lit[int64]{Value: n} }

// ColorLit returns a color literal.
func ColorLit(c piece.Color) ColorExpr { return Lit[piece.Color]{Value: c} }

// ModelLit returns a model literal.
func ModelLit(m piece.Model) ModelExpr { return Lit[piece.Model]{Value: m} }
