// internal/httpserver/routes_sessions.go
//
// Game session endpoints. Anyone may play; a signed-in designer becomes the
// owner of the sessions they start.
//
// Routes:
//   GET    /sessions                   -> running sessions
//   POST   /sessions                   -> {rules, winFirst?} -> {id, snapshot}
//   GET    /sessions/{id}              -> snapshot
//   DELETE /sessions/{id}              -> drop a session (owner only, if owned)
//   GET    /sessions/{id}/moves        -> ?row=&col= -> reachable tiles
//   GET    /sessions/{id}/placements   -> ?model=    -> placeable tiles
//   GET    /sessions/{id}/history      -> actions taken so far
//   POST   /sessions/{id}/move         -> {from, to}
//   POST   /sessions/{id}/place        -> {model, at}
//   POST   /sessions/{id}/pass
//
// Finished sessions are recorded in the library once.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/boardrules/internal/expr"
	"github.com/robalobadob/boardrules/internal/geom"
	"github.com/robalobadob/boardrules/internal/library"
	"github.com/robalobadob/boardrules/internal/piece"
	"github.com/robalobadob/boardrules/internal/rules"
	"github.com/robalobadob/boardrules/internal/session"
	"github.com/robalobadob/boardrules/internal/store"
)

type newSessionReq struct {
	Rules    string `json:"rules"`
	WinFirst bool   `json:"winFirst"`
}

type newSessionResp struct {
	ID       string           `json:"id"`
	Snapshot session.Snapshot `json:"snapshot"`
}

type sessionSummary struct {
	ID        string        `json:"id"`
	Rules     string        `json:"rules"`
	Phase     session.Phase `json:"phase"`
	Turn      int64         `json:"turn"`
	Owned     bool          `json:"owned"`
	CreatedAt time.Time     `json:"createdAt"`
}

type moveReq struct {
	From geom.Pos `json:"from"`
	To   geom.Pos `json:"to"`
}

type placeReq struct {
	Model piece.Model `json:"model"`
	At    geom.Pos    `json:"at"`
}

func (s *Server) mountSessions(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleNewSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/moves", s.handleMoves)
			r.Get("/placements", s.handlePlacements)
			r.Get("/history", s.handleHistory)
			r.Post("/move", s.handleMove)
			r.Post("/place", s.handlePlace)
			r.Post("/pass", s.handlePass)
		})
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	games, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error")
		return
	}
	out := make([]sessionSummary, 0, len(games))
	for _, g := range games {
		sum := sessionSummary{
			ID:        g.ID,
			Rules:     g.RulesName,
			Owned:     g.OwnerID != "",
			CreatedAt: g.CreatedAt,
		}
		_ = g.Do(func(ss *session.Session) error {
			sum.Phase, sum.Turn = ss.Phase(), ss.Turn()
			return nil
		})
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var body newSessionReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Rules == "" {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	c, err := s.resolveRules(r.Context(), body.Rules)
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown_rules")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	opts := []session.Option{session.WithLogger(log.Logger)}
	if body.WinFirst {
		opts = append(opts, session.WithPrecedence(rules.WinBeforeLose))
	}
	owner := ""
	if u := currentUser(r); u != nil {
		owner = u.ID
	}
	g := store.NewGame(body.Rules, owner, c, opts...)
	if err := s.store.Save(r.Context(), g); err != nil {
		writeError(w, http.StatusInternalServerError, "store_error")
		return
	}
	var snap session.Snapshot
	_ = g.Do(func(ss *session.Session) error {
		snap = ss.Snapshot()
		return nil
	})
	log.Info().Str("session", g.ID).Str("rules", body.Rules).Msg("session started")
	writeJSON(w, http.StatusCreated, newSessionResp{ID: g.ID, Snapshot: snap})
}

// game loads the session named in the URL, writing 404 when it is unknown.
func (s *Server) game(w http.ResponseWriter, r *http.Request) *store.Game {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_session")
		return nil
	}
	return g
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	g := s.game(w, r)
	if g == nil {
		return
	}
	var snap session.Snapshot
	_ = g.Do(func(ss *session.Session) error {
		snap = ss.Snapshot()
		return nil
	})
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	g := s.game(w, r)
	if g == nil {
		return
	}
	if g.OwnerID != "" {
		if u := currentUser(r); u == nil || u.ID != g.OwnerID {
			writeError(w, http.StatusForbidden, "not_owner")
			return
		}
	}
	_ = s.store.Delete(r.Context(), g.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	g := s.game(w, r)
	if g == nil {
		return
	}
	row, errR := strconv.Atoi(r.URL.Query().Get("row"))
	col, errC := strconv.Atoi(r.URL.Query().Get("col"))
	if errR != nil || errC != nil {
		writeError(w, http.StatusBadRequest, "row and col required")
		return
	}
	var tiles []geom.Pos
	_ = g.Do(func(ss *session.Session) error {
		tiles = ss.CollectMovable(geom.P(row, col))
		return nil
	})
	writeJSON(w, http.StatusOK, nonNil(tiles))
}

func (s *Server) handlePlacements(w http.ResponseWriter, r *http.Request) {
	g := s.game(w, r)
	if g == nil {
		return
	}
	m, ok := piece.ParseModel(r.URL.Query().Get("model"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown model")
		return
	}
	var tiles []geom.Pos
	_ = g.Do(func(ss *session.Session) error {
		tiles = ss.CollectPlaceable(m)
		return nil
	})
	writeJSON(w, http.StatusOK, nonNil(tiles))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	g := s.game(w, r)
	if g == nil {
		return
	}
	var hist []session.Action
	_ = g.Do(func(ss *session.Session) error {
		hist = ss.History()
		return nil
	})
	writeJSON(w, http.StatusOK, nonNil(hist))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var body moveReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	s.act(w, r, func(ss *session.Session) error { return ss.Move(body.From, body.To) })
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var body placeReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	s.act(w, r, func(ss *session.Session) error { return ss.Place(body.Model, body.At) })
}

func (s *Server) handlePass(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(ss *session.Session) error { return ss.Pass() })
}

// act runs one action against the session and answers with the new snapshot.
// The first time a session ends its result is stored.
func (s *Server) act(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	g := s.game(w, r)
	if g == nil {
		return
	}
	var (
		snap   session.Snapshot
		result *library.Result
	)
	err := g.Do(func(ss *session.Session) error {
		if err := fn(ss); err != nil {
			return err
		}
		snap = ss.Snapshot()
		if ss.Phase() == session.PhaseGameOver && g.MarkRecorded() {
			result = &library.Result{
				SessionID: g.ID,
				RulesName: g.RulesName,
				Winners:   ss.Winners(),
				Turns:     ss.Turn(),
				Rounds:    ss.Round(),
				Actions:   len(ss.History()),
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, actionStatus(err), err.Error())
		return
	}
	if result != nil {
		s.record(r.Context(), *result)
	}
	writeJSON(w, http.StatusOK, snap)
}

// record stores a finished game. Failures are logged; the game itself is
// already over either way.
func (s *Server) record(ctx context.Context, res library.Result) {
	if err := s.lib.InsertResult(ctx, res); err != nil {
		log.Warn().Err(err).Str("session", res.SessionID).Msg("record result failed")
		return
	}
	log.Info().Str("session", res.SessionID).Str("rules", res.RulesName).Msg("result recorded")
}

// actionStatus maps session errors to HTTP statuses.
func actionStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotYourPiece):
		return http.StatusForbidden
	case errors.Is(err, expr.ErrOutOfBoard), errors.Is(err, rules.ErrNoSuchModel):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
