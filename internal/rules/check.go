package rules

import (
	"strings"

	"github.com/robalobadob/boardrules/internal/expr"
	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/piece"
)

// Check validates the rule set and returns a read-only Checked copy.
// Validation stops at the first failure, in this order:
//
//	name, board size, pieces declared, duplicate models,
//	players declared, duplicate colors, then each initial layout entry
//	(on board, tile free, color declared, model declared, stock left),
//	then every expression against its scenario.
//
// Check is deterministic: the same input always yields the same error.
func (u *Unchecked) Check() (*Checked, error) {
	if strings.TrimSpace(u.Name) == "" {
		return nil, ErrNoName
	}
	if u.Board.Rows <= 0 || u.Board.Cols <= 0 {
		return nil, ErrInvalidBoardSize
	}
	if len(u.Pieces) == 0 {
		return nil, ErrNoAddedPiece
	}
	seenModel := make(map[piece.Model]bool, len(u.Pieces))
	for _, e := range u.Pieces {
		if seenModel[e.Model] {
			return nil, &NameError{Err: ErrDuplicateModel, Name: e.Model.String()}
		}
		seenModel[e.Model] = true
	}
	if len(u.Players) == 0 {
		return nil, ErrNoAddedPlayer
	}
	seenColor := make(map[piece.Color]bool, len(u.Players))
	for _, e := range u.Players {
		if seenColor[e.Color] {
			return nil, &NameError{Err: ErrDuplicateColor, Name: e.Color.String()}
		}
		seenColor[e.Color] = true
	}
	if err := u.checkLayout(); err != nil {
		return nil, err
	}
	if err := u.checkExpressions(); err != nil {
		return nil, err
	}
	return &Checked{data: u.clone()}, nil
}

type stockKey struct {
	model piece.Model
	color piece.Color
}

func (u *Unchecked) checkLayout() error {
	used := make(map[geom.Pos]bool, len(u.InitialLayout))
	stock := make(map[stockKey]piece.Count)
	for _, p := range u.InitialLayout {
		if !u.Board.Contains(p.Pos) {
			return &PosError{Err: ErrInitialPosOutOfBoard, Pos: p.Pos}
		}
		if used[p.Pos] {
			return &PosError{Err: ErrDuplicateInitialPos, Pos: p.Pos}
		}
		used[p.Pos] = true
		if _, ok := u.Players.Get(p.Color); !ok {
			return &NameError{Err: ErrNoSuchColor, Name: p.Color.String()}
		}
		rules, ok := u.Pieces.Get(p.Model)
		if !ok {
			return &NameError{Err: ErrNoSuchModel, Name: p.Model.String()}
		}

		key := stockKey{p.Model, p.Color}
		left, seen := stock[key]
		if !seen {
			left = rules.Count
		}
		if err := left.Decrease(); err != nil {
			return &PosError{Err: err, Pos: p.Pos}
		}
		stock[key] = left
	}
	return nil
}

func (u *Unchecked) checkExpressions() error {
	for _, e := range u.Pieces {
		base := "pieces." + e.Model.String()
		if err := e.Rules.Movement.Validate(expr.Movement); err != nil {
			return &ExprError{Where: base + ".movement", Err: err}
		}
		if err := e.Rules.Placement.Validate(expr.Placement); err != nil {
			return &ExprError{Where: base + ".placement", Err: err}
		}
	}
	for _, e := range u.Players {
		base := "players." + e.Color.String()
		if err := e.Rules.LoseCondition.Validate(expr.WinOrLose); err != nil {
			return &ExprError{Where: base + ".lose_condition", Err: err}
		}
		if err := e.Rules.WinCondition.Validate(expr.WinOrLose); err != nil {
			return &ExprError{Where: base + ".win_condition", Err: err}
		}
	}
	if err := u.GameOverCondition.Validate(expr.GameOver); err != nil {
		return &ExprError{Where: "game_over_condition", Err: err}
	}
	return nil
}
