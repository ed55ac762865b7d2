package library

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/boardrules/internal/piece"
	"github.com/robalobadob/boardrules/internal/rules"
)

func open(t *testing.T) *Library {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "data", "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

const doc = `
name: Tiny
board: {rows: 2, cols: 2}
pieces:
  pawn: {count: inf, movement: false, placement: true}
players:
  white: {win_condition: false, lose_condition: false}
game_over_condition: {ge: [turn_number, 4]}
`

func checked(t *testing.T, body string) *rules.Checked {
	t.Helper()
	u, err := rules.LoadBytes([]byte(body))
	require.NoError(t, err)
	c, err := u.Check()
	require.NoError(t, err)
	return c
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	l, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer l.Close()
	var n int
	require.NoError(t, l.db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestUsers(t *testing.T) {
	l := open(t)
	ctx := context.Background()

	u, err := l.CreateUser(ctx, "  ada_l ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada_l", u.Username)

	_, err = l.CreateUser(ctx, "ADA_L", "another password")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = l.CreateUser(ctx, "x", "short")
	assert.Error(t, err)

	got, err := l.Authenticate(ctx, "ada_l", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	_, err = l.Authenticate(ctx, "ada_l", "wrong password")
	assert.ErrorIs(t, err, ErrNotFound)

	byID, err := l.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, u.CreatedAt.Equal(byID.CreatedAt))
	_, err = l.FindUserByID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRuleDocuments(t *testing.T) {
	l := open(t)
	ctx := context.Background()
	ada, err := l.CreateUser(ctx, "ada", "correct horse")
	require.NoError(t, err)
	bob, err := l.CreateUser(ctx, "bob", "battery staple")
	require.NoError(t, err)

	c := checked(t, doc)
	require.NoError(t, l.PutRules(ctx, "tiny", ada.ID, c))

	got, err := l.GetRules(ctx, "tiny")
	require.NoError(t, err)
	assert.Equal(t, c.Edit(), got.Edit())

	assert.ErrorIs(t, l.PutRules(ctx, "tiny", bob.ID, c), ErrNotOwner)

	edited := c.Edit()
	edited.Name = "Tiny v2"
	c2, err := edited.Check()
	require.NoError(t, err)
	require.NoError(t, l.PutRules(ctx, "tiny", ada.ID, c2))

	docs, err := l.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Tiny v2", docs[0].Title)
	assert.Equal(t, ada.ID, docs[0].OwnerID)

	_, err = l.GetRules(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, l.DeleteRules(ctx, "tiny", bob.ID), ErrNotOwner)
	assert.ErrorIs(t, l.DeleteRules(ctx, "missing", ada.ID), ErrNotFound)
	require.NoError(t, l.DeleteRules(ctx, "tiny", ada.ID))
	docs, err = l.ListRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestResults(t *testing.T) {
	l := open(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	l.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	require.NoError(t, l.InsertResult(ctx, Result{SessionID: "a", RulesName: "tictactoe", Winners: []piece.Color{piece.White}, Turns: 5, Rounds: 3, Actions: 5}))
	require.NoError(t, l.InsertResult(ctx, Result{SessionID: "b", RulesName: "tictactoe", Turns: 9, Rounds: 5, Actions: 9}))
	require.NoError(t, l.InsertResult(ctx, Result{SessionID: "a", RulesName: "tictactoe", Turns: 1}))
	require.NoError(t, l.InsertResult(ctx, Result{SessionID: "c", RulesName: "gravity", Turns: 7}))

	got, err := l.Results(ctx, "tictactoe", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].SessionID)
	assert.Empty(t, got[0].Winners)
	assert.Equal(t, "a", got[1].SessionID)
	assert.Equal(t, []piece.Color{piece.White}, got[1].Winners)
	assert.Equal(t, int64(5), got[1].Turns)
	assert.True(t, base.Add(time.Minute).Equal(got[1].FinishedAt))
}
