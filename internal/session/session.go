// internal/session/session.go
//
// Runtime game session built from a checked rule set.
// Responsibilities:
//   - Place the initial layout, consuming each player's stock.
//   - Validate and apply moves and placements against the piece rules.
//   - After each action: evaluate lose/win per active player, then the
//     game-over condition, then hand the turn to the next active player.
//   - Track phase transitions: playing → game over.
//
// A Session is not safe for concurrent use; callers serialize access
// (see internal/store).
package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/robalobadob/boardrules/internal/expr"
	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/piece"
	"github.com/robalobadob/boardrules/internal/rules"
)

// Phase is the coarse session state.
type Phase uint8

const (
	PhasePlaying Phase = iota
	PhaseGameOver
)

func (p Phase) String() string {
	if p == PhaseGameOver {
		return "game_over"
	}
	return "playing"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "playing":
		*p = PhasePlaying
	case "game_over":
		*p = PhaseGameOver
	default:
		return fmt.Errorf("unknown phase %q", b)
	}
	return nil
}

// ActionKind says what a player did on their turn.
type ActionKind string

const (
	ActionMove  ActionKind = "move"
	ActionPlace ActionKind = "place"
	ActionPass  ActionKind = "pass"
)

// Action is one entry of the session history.
type Action struct {
	Turn  int64       `json:"turn"`
	Kind  ActionKind  `json:"kind"`
	Color piece.Color `json:"color"`
	Model piece.Model `json:"model"`
	From  *geom.Pos   `json:"from,omitempty"`
	To    *geom.Pos   `json:"to,omitempty"`
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l.With().Str("component", "session").Logger() }
}

// WithPrecedence overrides the win/lose precedence (default rules.LoseBeforeWin).
func WithPrecedence(p rules.Precedence) Option {
	return func(s *Session) { s.precedence = p }
}

// Session is one game in progress or finished.
type Session struct {
	rules      *rules.Checked
	board      *Board
	players    *Players
	turn       TurnController
	phase      Phase
	precedence rules.Precedence
	hasLast    bool
	last       geom.Pos
	history    []Action
	log        zerolog.Logger
}

// New starts a session. The initial layout is placed and taken from each
// player's stock; Check guarantees that succeeds, so a failure here panics.
func New(r *rules.Checked, opts ...Option) *Session {
	b := r.Board()
	s := &Session{
		rules:      r,
		board:      newBoard(b.Rows, b.Cols),
		players:    newPlayers(r),
		turn:       NewTurnController(),
		precedence: rules.LoseBeforeWin,
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	for _, ip := range r.InitialLayout() {
		p, ok := s.players.ByColor(ip.Color)
		if !ok {
			panic("session: initial piece for undeclared color " + ip.Color.String())
		}
		if err := p.DecreaseStock(ip.Model); err != nil {
			panic("session: initial layout exceeds stock: " + err.Error())
		}
		s.board.put(Placed{Model: ip.Model, Color: ip.Color, Pos: ip.Pos})
	}
	s.log.Debug().Str("rules", r.Name()).Int("players", s.players.Len()).Msg("session started")
	return s
}

func (s *Session) Rules() *rules.Checked { return s.rules }
func (s *Session) Board() *Board { return s.board }
func (s *Session) Players() *Players { return s.players }
func (s *Session) Phase() Phase { return s.phase }
func (s *Session) Turn() int64 { return s.turn.Turn() }
func (s *Session) Round() int64 { return s.turn.Round() }
func (s *Session) History() []Action { return slices.Clone(s.history) }

// CurrentPlayer returns the player whose turn it is.
func (s *Session) CurrentPlayer() *Player { return s.players.At(s.turn.Current()) }

// LastAction returns the destination of the most recent move or placement.
func (s *Session) LastAction() (geom.Pos, bool) { return s.last, s.hasLast }

// Move moves the current player's piece from one tile to another. A piece on
// the destination is captured.
func (s *Session) Move(from, to geom.Pos) error {
	if s.phase == PhaseGameOver {
		return ErrGameOver
	}
	mover, ok := s.board.At(from)
	if !ok {
		return ErrNoPiece
	}
	player := s.CurrentPlayer()
	if mover.Color != player.Color() {
		return ErrNotYourPiece
	}
	if !s.board.Contains(to) {
		return expr.ErrOutOfBoard
	}
	if to == from {
		return ErrIllegalMove
	}
	ok, err := s.canMove(mover, to)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIllegalMove
	}

	captured, hadCapture := s.board.At(to)
	moved := mover
	moved.Pos = to
	apply := func() {
		s.board.remove(from)
		s.board.put(moved)
	}
	undo := func() {
		s.board.remove(to)
		if hadCapture {
			s.board.put(captured)
		}
		s.board.put(mover)
	}
	act := Action{Kind: ActionMove, Color: mover.Color, Model: mover.Model, From: &from, To: &to}
	if err := s.commit(act, apply, undo); err != nil {
		return err
	}
	if hadCapture {
		s.log.Debug().Stringer("at", to).Stringer("model", captured.Model).Stringer("color", captured.Color).Msg("piece captured")
	}
	return nil
}

// Place puts a piece of model m from the current player's stock on at. Stock
// and board change together or not at all.
func (s *Session) Place(m piece.Model, at geom.Pos) error {
	if s.phase == PhaseGameOver {
		return ErrGameOver
	}
	player := s.CurrentPlayer()
	left, ok := player.Remaining(m)
	if !ok {
		return errNoSuchModel(m)
	}
	if !s.board.Contains(at) {
		return expr.ErrOutOfBoard
	}
	if _, taken := s.board.At(at); taken {
		return ErrTileOccupied
	}
	if left.Exhausted() {
		return piece.ErrCountDepleted
	}
	ok, err := s.canPlace(player.Color(), m, at)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIllegalPlacement
	}

	pc := Placed{Model: m, Color: player.Color(), Pos: at}
	apply := func() {
		if err := player.DecreaseStock(m); err != nil {
			panic("session: stock changed during placement: " + err.Error())
		}
		s.board.put(pc)
	}
	undo := func() {
		s.board.remove(at)
		player.increaseStock(m)
	}
	return s.commit(Action{Kind: ActionPlace, Color: pc.Color, Model: m, To: &at}, apply, undo)
}

// Pass ends the current player's turn without acting.
func (s *Session) Pass() error {
	if s.phase == PhaseGameOver {
		return ErrGameOver
	}
	act := Action{Kind: ActionPass, Color: s.CurrentPlayer().Color()}
	return s.commit(act, func() {}, func() {})
}

// commit applies an action and runs end-of-turn evaluation. If any condition
// fails to evaluate the action is undone and the session is left as it was.
func (s *Session) commit(act Action, apply, undo func()) error {
	prevHas, prevLast := s.hasLast, s.last
	prevStates := s.players.States()

	apply()
	if act.To != nil {
		s.hasLast, s.last = true, *act.To
	}

	over, err := s.endTurn()
	if err != nil {
		for i, st := range prevStates {
			s.players.At(i).state = st
		}
		s.hasLast, s.last = prevHas, prevLast
		undo()
		s.log.Warn().Err(err).Str("action", string(act.Kind)).Msg("end of turn evaluation failed; action undone")
		return err
	}

	act.Turn = s.turn.Turn()
	s.history = append(s.history, act)
	if over {
		s.finish()
		return nil
	}
	if err := s.turn.Advance(s.players.States()); err != nil {
		if !errors.Is(err, ErrNoActivePlayer) {
			return err
		}
		s.log.Debug().Msg("no active player left")
		s.finish()
	}
	return nil
}

// endTurn evaluates each active player's outcome in turn order, then the
// game-over condition. Outcomes are applied as they are found so later
// players observe earlier results.
func (s *Session) endTurn() (bool, error) {
	ctx := stateContext{s: s}
	for i := 0; i < s.players.Len(); i++ {
		p := s.players.At(i)
		if p.State() != piece.Active {
			continue
		}
		pr, ok := s.rules.Player(p.Color())
		if !ok {
			panic("session: player " + p.Color().String() + " has no rules")
		}
		st, err := pr.OutcomeWith(ctx, s.precedence)
		if err != nil {
			return false, &OutcomeError{Where: "players." + p.Color().String(), Err: err}
		}
		if p.finish(st) {
			s.log.Info().Stringer("color", p.Color()).Stringer("state", st).Int64("turn", s.turn.Turn()).Msg("player finished")
		}
	}
	over, err := s.rules.GameOverCondition().Eval(ctx)
	if err != nil {
		return false, &OutcomeError{Where: "game_over_condition", Err: err}
	}
	return over, nil
}

func (s *Session) finish() {
	s.phase = PhaseGameOver
	s.log.Info().Int64("turn", s.turn.Turn()).Int64("round", s.turn.Round()).Msg("game over")
}

// Winners lists the players that reached Won.
func (s *Session) Winners() []piece.Color {
	var out []piece.Color
	for i := 0; i < s.players.Len(); i++ {
		if p := s.players.At(i); p.State() == piece.Won {
			out = append(out, p.Color())
		}
	}
	return out
}

// OutcomeError reports an end condition that failed to evaluate, e.g.
// "players.white" or "game_over_condition".
type OutcomeError struct {
	Where string
	Err   error
}

func (e *OutcomeError) Error() string { return e.Where + ": " + e.Err.Error() }
func (e *OutcomeError) Unwrap() error { return e.Err }

func errNoSuchModel(m piece.Model) error {
	return &rules.NameError{Err: rules.ErrNoSuchModel, Name: m.String()}
}
