package rules

import (
	"errors"
	"fmt"

	"github.com/robalobadob/boardrules/internal/expr"
	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/piece"
)

var (
	ErrNoName               = errors.New("rule set has no name")
	ErrInvalidBoardSize     = errors.New("board rows and cols must be positive")
	ErrNoAddedPiece         = errors.New("no piece declared")
	ErrNoAddedPlayer        = errors.New("no player declared")
	ErrDuplicateModel       = errors.New("piece model declared twice")
	ErrDuplicateColor       = errors.New("player color declared twice")
	ErrNoSuchModel          = errors.New("no piece with this model")
	ErrInitialPosOutOfBoard = errors.New("initial position out of board")
	ErrDuplicateInitialPos  = errors.New("initial position used twice")

	ErrNoSuchColor     = expr.ErrNoSuchColor
	ErrCountDepleted   = piece.ErrCountDepleted
	ErrAndInvalidArity = expr.ErrAndInvalidArity
	ErrOrInvalidArity  = expr.ErrOrInvalidArity
)

// PosError ties a validation failure to a board position.
type PosError struct {
	Err error
	Pos geom.Pos
}

func (e *PosError) Error() string { return fmt.Sprintf("%v: %v", e.Err, e.Pos) }
func (e *PosError) Unwrap() error { return e.Err }

// NameError ties a validation failure to a model or color name.
type NameError struct {
	Err  error
	Name string
}

func (e *NameError) Error() string { return fmt.Sprintf("%v: %s", e.Err, e.Name) }
func (e *NameError) Unwrap() error { return e.Err }

// ExprError locates an invalid expression in the document, e.g. "pieces.pawn.movement".
type ExprError struct {
	Where string
	Err   error
}

func (e *ExprError) Error() string { return fmt.Sprintf("%s: %v", e.Where, e.Err) }
func (e *ExprError) Unwrap() error { return e.Err }

// FormatError reports a document that could not be read or written.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string { return "rule document: " + e.Err.Error() }
func (e *FormatError) Unwrap() error { return e.Err }
