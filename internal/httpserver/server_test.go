package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/boardrules/internal/catalog"
	"github.com/robalobadob/boardrules/internal/config"
	"github.com/robalobadob/boardrules/internal/library"
	"github.com/robalobadob/boardrules/internal/session"
	"github.com/robalobadob/boardrules/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)
	lib, err := library.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	cfg := &config.Config{
		JWTSecret:      "test_secret",
		JWTExpiresDays: 1,
		CookieName:     "boardrules_token",
		ClientOrigin:   "http://localhost:5173",
		AppEnv:         "test",
	}
	return New(cfg, cat, lib, store.NewMemoryStore())
}

func do(t *testing.T, s *Server, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func signup(t *testing.T, s *Server, name string) *http.Cookie {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/auth/signup", `{"username":"`+name+`","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "boardrules_token" {
			return c
		}
	}
	t.Fatal("no auth cookie")
	return nil
}

const tinyDoc = `
name: Tiny
board: {rows: 2, cols: 2}
pieces:
  pawn: {count: inf, movement: false, placement: true}
players:
  white: {win_condition: false, lose_condition: false}
game_over_condition: {ge: [turn_number, 3]}
`

func TestHealthAndNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodOptions, "/rules", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestListAndGetRules(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/rules", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Builtin   []string           `json:"builtin"`
		Published []library.Document `json:"published"`
	}](t, rec)
	assert.Equal(t, []string{"breakthrough", "gravity", "tictactoe"}, list.Builtin)
	assert.Empty(t, list.Published)

	rec = do(t, s, http.MethodGet, "/rules/tictactoe", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "yaml")
	assert.Contains(t, rec.Body.String(), "name: Tic Tac Toe")

	rec = do(t, s, http.MethodGet, "/rules/chess", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckRules(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/rules/check", tinyDoc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ok":true,"name":"Tiny","board":{"rows":2,"cols":2},"models":["pawn"],"players":["white"]}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/rules/check", "name: [")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/rules/check", strings.Replace(tinyDoc, "rows: 2", "rows: 0", 1))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "board rows and cols must be positive")
}

func TestPublishRules(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/rules/tiny", tinyDoc)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	alice := signup(t, s, "alice")
	rec = do(t, s, http.MethodPut, "/rules/tiny", tinyDoc, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodPut, "/rules/tictactoe", tinyDoc, alice)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPut, "/rules/broken", strings.Replace(tinyDoc, "players:", "playerz:", 1), alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bob := signup(t, s, "bob")
	rec = do(t, s, http.MethodPut, "/rules/tiny", tinyDoc, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, s, http.MethodDelete, "/rules/tiny", "", bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, s, http.MethodDelete, "/rules/nothing", "", bob)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/rules/tiny", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "name: Tiny")

	rec = do(t, s, http.MethodDelete, "/rules/tiny", "", alice)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodGet, "/rules/tiny", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionPlaysTicTacToe(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/sessions", `{"rules":"tictactoe"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[newSessionResp](t, rec)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Tic Tac Toe", created.Snapshot.Rules)
	base := "/sessions/" + created.ID

	rec = do(t, s, http.MethodGet, base+"/placements?model=pawn", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]int](t, rec), 9)

	place := func(row, col string) *httptest.ResponseRecorder {
		return do(t, s, http.MethodPost, base+"/place", `{"model":"pawn","at":{"row":`+row+`,"col":`+col+`}}`)
	}
	for _, rc := range [][2]string{{"0", "0"}, {"1", "0"}, {"0", "1"}, {"1", "1"}} {
		rec = place(rc[0], rc[1])
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = place("0", "0")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = place("3", "0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, base+"/move", `{"from":{"row":0,"col":0},"to":{"row":2,"col":2}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = place("0", "2")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[map[string]any](t, rec)
	assert.Equal(t, "game_over", snap["phase"])
	assert.Equal(t, []any{"white"}, snap["winners"])

	rec = do(t, s, http.MethodPost, base+"/pass", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodGet, base+"/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode[[]session.Action](t, rec)
	require.Len(t, hist, 5)
	assert.Equal(t, session.ActionPlace, hist[4].Kind)

	rec = do(t, s, http.MethodGet, "/rules/tictactoe/results", "")
	require.Equal(t, http.StatusOK, rec.Code)
	results := decode[[]library.Result](t, rec)
	require.Len(t, results, 1)
	assert.Equal(t, created.ID, results[0].SessionID)
	assert.Equal(t, int64(5), results[0].Turns)
	assert.Equal(t, 5, results[0].Actions)
}

func TestSessionMovesAndBadInput(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/sessions", `{"rules":"breakthrough"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/sessions/" + decode[newSessionResp](t, rec).ID

	rec = do(t, s, http.MethodGet, base+"/moves?row=4&col=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[[]map[string]int](t, rec))

	rec = do(t, s, http.MethodGet, base+"/moves?row=2&col=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = do(t, s, http.MethodGet, base+"/moves?row=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodGet, base+"/placements?model=dragon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodPost, base+"/move", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodGet, "/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, s, http.MethodPost, "/sessions", `{"rules":"chess"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionOwnership(t *testing.T) {
	s := newTestServer(t)
	alice := signup(t, s, "alice")

	rec := do(t, s, http.MethodPost, "/sessions", `{"rules":"gravity"}`, alice)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[newSessionResp](t, rec).ID

	rec = do(t, s, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]sessionSummary](t, rec)
	require.Len(t, list, 1)
	assert.True(t, list[0].Owned)
	assert.Equal(t, session.PhasePlaying, list[0].Phase)

	rec = do(t, s, http.MethodDelete, "/sessions/"+id, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, s, http.MethodDelete, "/sessions/"+id, "", alice)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodGet, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthMe(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	alice := signup(t, s, "alice")
	rec = do(t, s, http.MethodGet, "/auth/me", "", alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[authUser](t, rec).Username)

	rec = do(t, s, http.MethodPost, "/auth/signup", `{"username":"alice","password":"secret123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = do(t, s, http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(t, s, http.MethodPost, "/auth/login", `{"username":"alice","password":"secret123"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Auth-Token"))
}
