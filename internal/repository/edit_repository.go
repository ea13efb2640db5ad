// Package repository persists the audit trail of edits applied to uploaded
// seat maps.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Edit is one applied request against a session.
type Edit struct {
	ID        uint64          `json:"id"`
	SessionID string          `json:"session_id"`
	Actor     string          `json:"actor"`
	Mode      string          `json:"mode"`
	Request   json.RawMessage `json:"request"`
	Matched   int             `json:"matched"`
	Missing   int             `json:"missing"`
	Updated   int             `json:"updated"`
	Blocked   int             `json:"blocked"`
	CreatedAt time.Time       `json:"created_at"`
}

// EditRepo reads and writes rows of seatmap_edits.
type EditRepo struct{ DB *sql.DB }

func NewEditRepo(db *sql.DB) *EditRepo { return &EditRepo{DB: db} }

// Record inserts e, filling ID and CreatedAt.
func (r *EditRepo) Record(ctx context.Context, e *Edit) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	req := e.Request
	if len(req) == 0 {
		req = json.RawMessage("{}")
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO seatmap_edits (session_id, actor, mode, request_json, matched, missing, updated, blocked, created_at) VALUES (?,?,?,?,?,?,?,?,?)",
		e.SessionID, e.Actor, e.Mode, string(req), e.Matched, e.Missing, e.Updated, e.Blocked, e.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ListBySession returns the newest edits first.  limit <= 0 means 100.
func (r *EditRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]Edit, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, session_id, actor, mode, request_json, matched, missing, updated, blocked, created_at FROM seatmap_edits WHERE session_id=? ORDER BY id DESC LIMIT ?",
		sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Edit{}
	for rows.Next() {
		var (
			e   Edit
			req []byte
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Actor, &e.Mode, &req,
			&e.Matched, &e.Missing, &e.Updated, &e.Blocked, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Request = json.RawMessage(req)
		out = append(out, e)
	}
	return out, rows.Err()
}
