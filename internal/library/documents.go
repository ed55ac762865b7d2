package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/boardrules/internal/rules"
)

// ErrNotOwner is returned when a designer overwrites another designer's document.
var ErrNotOwner = errors.New("rule document owned by another designer")

// Document describes a published rule document.
type Document struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PutRules publishes c under name, replacing the previous version when the
// same designer owns it.
func (l *Library) PutRules(ctx context.Context, name, ownerID string, c *rules.Checked) error {
	body, err := c.Bytes()
	if err != nil {
		return err
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT owner_id FROM rule_documents WHERE name=?`, name).Scan(&owner)
	now := l.stamp()
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rule_documents (name, title, body, owner_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`, name, c.Name(), string(body), ownerID, now, now)
	case err != nil:
		return err
	case owner != ownerID:
		return ErrNotOwner
	default:
		_, err = tx.ExecContext(ctx, `UPDATE rule_documents SET title=?, body=?, updated_at=? WHERE name=?`,
			c.Name(), string(body), now, name)
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	l.log.Info().Str("name", name).Str("owner", ownerID).Msg("rule document saved")
	return nil
}

// GetRules loads and re-checks the document called name.
func (l *Library) GetRules(ctx context.Context, name string) (*rules.Checked, error) {
	var body string
	err := l.db.QueryRowContext(ctx, `SELECT body FROM rule_documents WHERE name=?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u, err := rules.LoadBytes([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("stored document %s: %w", name, err)
	}
	c, err := u.Check()
	if err != nil {
		return nil, fmt.Errorf("stored document %s: %w", name, err)
	}
	return c, nil
}

// ListRules returns every published document, by name.
func (l *Library) ListRules(ctx context.Context) ([]Document, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT name, title, owner_id, created_at, updated_at
		FROM rule_documents ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		var d Document
		var created, updated string
		if err := rows.Scan(&d.Name, &d.Title, &d.OwnerID, &created, &updated); err != nil {
			return nil, err
		}
		d.CreatedAt, d.UpdatedAt = parseTime(created), parseTime(updated)
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteRules removes a document owned by ownerID. It returns ErrNotFound for
// unknown names and ErrNotOwner for another designer's document.
func (l *Library) DeleteRules(ctx context.Context, name, ownerID string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM rule_documents WHERE name=? AND owner_id=?`, name, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var owner string
	err = l.db.QueryRowContext(ctx, `SELECT owner_id FROM rule_documents WHERE name=?`, name).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrNotOwner
}
