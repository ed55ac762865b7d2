package expr

import (
	"fmt"

	"github.com/robalobadob/boardrules/internal/piece"
)

// ColorAt is the color of the piece on (Row, Col).
type ColorAt struct {
	Row Int
	Col Int
}

func (e ColorAt) Eval(ctx Context) (piece.Color, error) {
	p, err := evalPos(ctx, e.Row, e.Col)
	if err != nil {
		return 0, err
	}
	return ctx.ColorAt(p)
}

func (e ColorAt) check(s Scenario) error { return checkPair(e.Row, e.Col, s) }

// ModelAt is the model of the piece on (Row, Col).
type ModelAt struct {
	Row Int
	Col Int
}

func (e ModelAt) Eval(ctx Context) (piece.Model, error) {
	p, err := evalPos(ctx, e.Row, e.Col)
	if err != nil {
		return 0, err
	}
	return ctx.ModelAt(p)
}

func (e ModelAt) check(s Scenario) error { return checkPair(e.Row, e.Col, s) }

// ColorVar reads moving_color or to_place_color.
type ColorVar struct {
	Var Variable
}

func (e ColorVar) Eval(ctx Context) (piece.Color, error) {
	switch e.Var {
	case VarMovingColor:
		return ctx.MovingColor()
	case VarToPlaceColor:
		return ctx.ToPlaceColor()
	}
	return 0, fmt.Errorf("%w: %q is not a color variable", ErrUnknownVariable, e.Var)
}

func (e ColorVar) check(s Scenario) error { return checkVar(e.Var, kindColor, s) }

// ModelVar reads moving_model or to_place_model.
type ModelVar struct {
	Var Variable
}

func (e ModelVar) Eval(ctx Context) (piece.Model, error) {
	switch e.Var {
	case VarMovingModel:
		return ctx.MovingModel()
	case VarToPlaceModel:
		return ctx.ToPlaceModel()
	}
	return 0, fmt.Errorf("%w: %q is not a model variable", ErrUnknownVariable, e.Var)
}

func (e ModelVar) check(s Scenario) error { return checkVar(e.Var, kindModel, s) }
