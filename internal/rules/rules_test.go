package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/boardrules/internal/expr"
	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/piece"
)

// sample is a valid 4×4 rule set: pawns step one row forward onto an empty
// tile, a player loses with no pawn left and wins on reaching the far row.
func sample() *Unchecked {
	step := expr.And{Operands: []expr.Bool{
		expr.Compare{Op: expr.Equal,
			Left:  expr.Arith{Op: expr.Sub, Left: expr.Var(expr.VarTargetRow), Right: expr.Var(expr.VarSourceRow)},
			Right: expr.Const(1)},
		expr.Compare{Op: expr.Equal, Left: expr.Var(expr.VarTargetCol), Right: expr.Var(expr.VarSourceCol)},
	}}
	noPawn := func(c piece.Color) expr.Bool {
		return expr.Compare{Op: expr.Equal,
			Left:  expr.CountPieceInRect{Model: expr.ModelLit(piece.Pawn), Color: expr.ColorLit(c), Rect: expr.RectOf(geom.P(0, 0), geom.P(3, 3))},
			Right: expr.Const(0)}
	}
	farRow := func(c piece.Color) expr.Bool {
		return expr.Compare{Op: expr.GreaterThan,
			Left:  expr.CountPieceInRect{Model: expr.ModelLit(piece.Pawn), Color: expr.ColorLit(c), Rect: expr.RectOf(geom.P(3, 0), geom.P(3, 3))},
			Right: expr.Const(0)}
	}
	return &Unchecked{
		Name:  "pawn race",
		Board: Board{Rows: 4, Cols: 4},
		Pieces: Pieces{{Model: piece.Pawn, Rules: PieceRules{
			Count:     piece.Finite(2),
			Movement:  expr.When(step),
			Placement: expr.When(expr.Compare{Op: expr.Equal, Left: expr.Var(expr.VarToPlaceRow), Right: expr.Const(0)}),
		}}},
		Players: Players{
			{Color: piece.White, Rules: PlayerRules{WinCondition: expr.When(farRow(piece.White)), LoseCondition: expr.When(noPawn(piece.White))}},
			{Color: piece.Black, Rules: PlayerRules{WinCondition: expr.When(farRow(piece.Black)), LoseCondition: expr.When(noPawn(piece.Black))}},
		},
		InitialLayout: Layout{
			{Model: piece.Pawn, Color: piece.White, Pos: geom.P(0, 0)},
			{Model: piece.Pawn, Color: piece.Black, Pos: geom.P(0, 3)},
		},
		GameOverCondition: expr.When(expr.Compare{Op: expr.GreaterThan, Left: expr.Var(expr.VarTurnNumber), Right: expr.Const(40)}),
	}
}

func TestCheckAcceptsSample(t *testing.T) {
	c, err := sample().Check()
	require.NoError(t, err)
	assert.Equal(t, "pawn race", c.Name())
	assert.Equal(t, Board{Rows: 4, Cols: 4}, c.Board())
	assert.Equal(t, []piece.Color{piece.White, piece.Black}, c.Players().Colors())
	r, ok := c.Piece(piece.Pawn)
	require.True(t, ok)
	assert.Equal(t, piece.Finite(2), r.Count)
	_, ok = c.Piece(piece.King)
	assert.False(t, ok)
}

func TestCheckOrder(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(u *Unchecked)
		want   error
	}{
		{"no name", func(u *Unchecked) { u.Name = " "; u.Board = Board{} }, ErrNoName},
		{"board", func(u *Unchecked) { u.Board.Cols = 0; u.Pieces = nil }, ErrInvalidBoardSize},
		{"no piece", func(u *Unchecked) { u.Pieces = nil; u.Players = nil }, ErrNoAddedPiece},
		{"duplicate model", func(u *Unchecked) { u.Pieces = append(u.Pieces, u.Pieces[0]); u.Players = nil }, ErrDuplicateModel},
		{"no player", func(u *Unchecked) { u.Players = nil }, ErrNoAddedPlayer},
		{"duplicate color", func(u *Unchecked) {
			u.Players = append(u.Players, u.Players[0])
			u.InitialLayout = Layout{{Model: piece.King}}
		}, ErrDuplicateColor},
		{"out of board before names", func(u *Unchecked) {
			u.InitialLayout = Layout{{Model: piece.King, Color: piece.Red, Pos: geom.P(9, 9)}}
		}, ErrInitialPosOutOfBoard},
		{"no such color", func(u *Unchecked) {
			u.InitialLayout = Layout{{Model: piece.King, Color: piece.Red, Pos: geom.P(1, 1)}}
		}, ErrNoSuchColor},
		{"no such model", func(u *Unchecked) {
			u.InitialLayout = Layout{{Model: piece.King, Color: piece.White, Pos: geom.P(1, 1)}}
		}, ErrNoSuchModel},
		{"layout before expressions", func(u *Unchecked) {
			u.InitialLayout = Layout{{Model: piece.Pawn, Color: piece.White, Pos: geom.P(9, 9)}}
			u.GameOverCondition = expr.Predicate{}
		}, ErrInitialPosOutOfBoard},
		{"missing condition", func(u *Unchecked) { u.GameOverCondition = expr.Predicate{} }, expr.ErrMissingExpression},
		{"and arity", func(u *Unchecked) {
			u.Pieces[0].Rules.Movement = expr.When(expr.And{Operands: []expr.Bool{expr.True}})
		}, ErrAndInvalidArity},
		{"or arity", func(u *Unchecked) {
			u.Players[1].Rules.WinCondition = expr.When(expr.Or{})
		}, ErrOrInvalidArity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := sample()
			tc.mutate(u)
			c, err := u.Check()
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCheckLayout(t *testing.T) {
	t.Run("out of board", func(t *testing.T) {
		u := sample()
		u.InitialLayout = append(u.InitialLayout, InitialPiece{Model: piece.Pawn, Color: piece.White, Pos: geom.P(4, 0)})
		_, err := u.Check()
		var pe *PosError
		require.ErrorAs(t, err, &pe)
		assert.ErrorIs(t, err, ErrInitialPosOutOfBoard)
		assert.Equal(t, geom.P(4, 0), pe.Pos)
	})
	t.Run("duplicate position", func(t *testing.T) {
		u := sample()
		u.InitialLayout = Layout{
			{Model: piece.Pawn, Color: piece.White, Pos: geom.P(3, 3)},
			{Model: piece.Pawn, Color: piece.Black, Pos: geom.P(3, 3)},
		}
		_, err := u.Check()
		var pe *PosError
		require.ErrorAs(t, err, &pe)
		assert.ErrorIs(t, err, ErrDuplicateInitialPos)
		assert.Equal(t, geom.P(3, 3), pe.Pos)
	})
	t.Run("stock exhausted on third entry", func(t *testing.T) {
		u := sample()
		u.InitialLayout = Layout{
			{Model: piece.Pawn, Color: piece.White, Pos: geom.P(0, 0)},
			{Model: piece.Pawn, Color: piece.White, Pos: geom.P(0, 1)},
			{Model: piece.Pawn, Color: piece.Black, Pos: geom.P(0, 3)},
			{Model: piece.Pawn, Color: piece.White, Pos: geom.P(0, 2)},
		}
		_, err := u.Check()
		var pe *PosError
		require.ErrorAs(t, err, &pe)
		assert.ErrorIs(t, err, ErrCountDepleted)
		assert.Equal(t, geom.P(0, 2), pe.Pos)
	})
	t.Run("infinite stock", func(t *testing.T) {
		u := sample()
		u.Pieces[0].Rules.Count = piece.Infinite()
		for c := 0; c < 4; c++ {
			u.InitialLayout = append(u.InitialLayout, InitialPiece{Model: piece.Pawn, Color: piece.Black, Pos: geom.P(2, c)})
		}
		_, err := u.Check()
		assert.NoError(t, err)
	})
}

func TestCheckExpressionLocation(t *testing.T) {
	u := sample()
	u.Pieces[0].Rules.Movement = expr.When(expr.Compare{Op: expr.Equal, Left: expr.Var(expr.VarToPlaceRow), Right: expr.Const(0)})
	_, err := u.Check()
	var ee *ExprError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "pieces.pawn.movement", ee.Where)
	assert.ErrorIs(t, err, expr.ErrUnsupportedVariable)

	u = sample()
	u.GameOverCondition = expr.When(expr.Compare{Op: expr.Equal, Left: expr.Var(expr.VarSourceRow), Right: expr.Const(0)})
	_, err = u.Check()
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "game_over_condition", ee.Where)
}

func TestCheckIsDeterministic(t *testing.T) {
	u := sample()
	u.Players = append(u.Players, u.Players[0])
	_, first := u.Check()
	for i := 0; i < 5; i++ {
		_, err := u.Check()
		assert.Equal(t, first.Error(), err.Error())
	}
}

func TestCheckedIsIndependentOfSource(t *testing.T) {
	u := sample()
	c, err := u.Check()
	require.NoError(t, err)
	u.Players[0].Color = piece.Red
	u.InitialLayout[0].Pos = geom.P(3, 3)
	assert.Equal(t, piece.White, c.Players()[0].Color)
	assert.Equal(t, geom.P(0, 0), c.InitialLayout()[0].Pos)

	ps := c.Players()
	ps[0].Color = piece.Green
	assert.Equal(t, piece.White, c.Players()[0].Color)

	e := c.Edit()
	e.Name = "edited"
	assert.Equal(t, "pawn race", c.Name())
}

func TestBoardConstants(t *testing.T) {
	b := Board{Rows: 2, Cols: 3}
	assert.Equal(t, 1.0, b.TileSize())
	assert.Equal(t, 0.2, b.TileHeight())
	assert.Len(t, b.Tiles(), 6)
	assert.True(t, b.Contains(geom.P(1, 2)))
	assert.False(t, b.Contains(geom.P(2, 0)))
}

// endContext answers only player-state questions.
type endContext struct {
	expr.Unsupported
}

func TestOutcomePrecedence(t *testing.T) {
	both := PlayerRules{WinCondition: expr.When(expr.True), LoseCondition: expr.When(expr.True)}
	st, err := both.Outcome(endContext{})
	require.NoError(t, err)
	assert.Equal(t, piece.Lost, st)

	st, err = both.OutcomeWith(endContext{}, WinBeforeLose)
	require.NoError(t, err)
	assert.Equal(t, piece.Won, st)

	neither := PlayerRules{WinCondition: expr.When(expr.False), LoseCondition: expr.When(expr.False)}
	st, err = neither.Outcome(endContext{})
	require.NoError(t, err)
	assert.Equal(t, piece.Active, st)

	// Lose holds, so the failing win condition is never evaluated.
	loses := PlayerRules{
		WinCondition:  expr.When(expr.Compare{Op: expr.Equal, Left: expr.Var(expr.VarTurnNumber), Right: expr.Const(1)}),
		LoseCondition: expr.When(expr.True),
	}
	st, err = loses.Outcome(endContext{})
	require.NoError(t, err)
	assert.Equal(t, piece.Lost, st)

	_, err = loses.OutcomeWith(endContext{}, WinBeforeLose)
	assert.True(t, errors.Is(err, expr.ErrUnsupportedVariable))
}
