// internal/httpserver/routes_rules.go
//
// Rule set endpoints.
//
// Routes:
//   GET    /rules                 -> built-in names + published documents
//   GET    /rules/{name}          -> rule document (YAML)
//   PUT    /rules/{name}          -> publish a document   (designers only)
//   DELETE /rules/{name}          -> withdraw a document  (owner only)
//   POST   /rules/check           -> load + check a document without saving it
//   GET    /rules/{name}/results  -> recent finished games
//
// Documents travel as YAML in request and response bodies; every other
// response is JSON.
package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/boardrules/internal/library"
	"github.com/robalobadob/boardrules/internal/rules"
)

// maxDocumentBytes caps uploaded rule documents.
const maxDocumentBytes = 1 << 20

func (s *Server) mountRules() {
	s.r.Route("/rules", func(r chi.Router) {
		r.Get("/", s.handleListRules)
		r.Post("/check", s.handleCheckRules)
		r.Get("/{name}", s.handleGetRules)
		r.Get("/{name}/results", s.handleResults)
		r.With(s.requireAuth()).Put("/{name}", s.handlePutRules)
		r.With(s.requireAuth()).Delete("/{name}", s.handleDeleteRules)
	})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	docs, err := s.lib.ListRules(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"builtin":   s.catalog.Names(),
		"published": docs,
	})
}

func (s *Server) handleGetRules(w http.ResponseWriter, r *http.Request) {
	c, err := s.resolveRules(r.Context(), chi.URLParam(r, "name"))
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown_rules")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	body, err := c.Bytes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode_failed")
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// readChecked loads and checks the request body. On failure it writes the
// response and returns nil: 400 for unreadable documents, 422 for documents
// that read fine but break a rule.
func readChecked(w http.ResponseWriter, r *http.Request) *rules.Checked {
	u, err := rules.Load(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	c, err := u.Check()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return nil
	}
	return c
}

func (s *Server) handleCheckRules(w http.ResponseWriter, r *http.Request) {
	c := readChecked(w, r)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"name":    c.Name(),
		"board":   c.Board(),
		"models":  c.Pieces().Models(),
		"players": c.Players().Colors(),
	})
}

func (s *Server) handlePutRules(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, builtin := s.catalog.Get(name); builtin {
		writeError(w, http.StatusConflict, "name reserved by a built-in rule set")
		return
	}
	c := readChecked(w, r)
	if c == nil {
		return
	}
	err := s.lib.PutRules(r.Context(), name, currentUser(r).ID, c)
	switch {
	case errors.Is(err, library.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "db_error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"name": name, "title": c.Name()})
	}
}

func (s *Server) handleDeleteRules(w http.ResponseWriter, r *http.Request) {
	err := s.lib.DeleteRules(r.Context(), chi.URLParam(r, "name"), currentUser(r).ID)
	switch {
	case errors.Is(err, library.ErrNotFound):
		writeError(w, http.StatusNotFound, "unknown_rules")
	case errors.Is(err, library.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "db_error")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = n
	}
	res, err := s.lib.Results(r.Context(), chi.URLParam(r, "name"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
