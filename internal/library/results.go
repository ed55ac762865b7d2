package library

import (
	"context"
	"strings"
	"time"

	"github.com/robalobadob/boardrules/internal/piece"
)

// Result is one finished session.
type Result struct {
	SessionID  string        `json:"sessionId"`
	RulesName  string        `json:"rules"`
	Winners    []piece.Color `json:"winners"`
	Turns      int64         `json:"turns"`
	Rounds     int64         `json:"rounds"`
	Actions    int           `json:"actions"`
	FinishedAt time.Time     `json:"finishedAt"`
}

// InsertResult records a finished session. Recording the same session twice
// is ignored.
func (l *Library) InsertResult(ctx context.Context, r Result) error {
	names := make([]string, len(r.Winners))
	for i, c := range r.Winners {
		names[i] = c.String()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO game_results (session_id, rules_name, winners, turns, rounds, actions, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.RulesName, strings.Join(names, ","), r.Turns, r.Rounds, r.Actions, l.stamp(),
	)
	return err
}

// Results lists the most recent results for a rule set, newest first.
// The default limit is 20.
func (l *Library) Results(ctx context.Context, rulesName string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT session_id, rules_name, winners, turns, rounds, actions, finished_at
		FROM game_results
		WHERE rules_name=?
		ORDER BY finished_at DESC, session_id
		LIMIT ?`, rulesName, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		var winners, finished string
		if err := rows.Scan(&r.SessionID, &r.RulesName, &winners, &r.Turns, &r.Rounds, &r.Actions, &finished); err != nil {
			return nil, err
		}
		r.FinishedAt = parseTime(finished)
		r.Winners = []piece.Color{}
		for _, w := range strings.Split(winners, ",") {
			if c, ok := piece.ParseColor(w); ok {
				r.Winners = append(r.Winners, c)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
