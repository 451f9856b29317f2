package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/notehub/internal/apperr"
	"github.com/starford/notehub/internal/models"
)

const noteColumns = `id, title, content, tag, created_at, updated_at`

// Insert adds a new note.
func (db *DB) Insert(ctx context.Context, n *models.Note) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Content, string(n.Tag), n.CreatedAt.UTC(), n.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("store: insert note: %w", err)
	}
	return nil
}

// Update replaces title, content, tag and update time of an existing note.
func (db *DB) Update(ctx context.Context, n *models.Note) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE notes
		SET title = ?, content = ?, tag = ?, updated_at = ?
		WHERE id = ?
	`, n.Title, n.Content, string(n.Tag), n.UpdatedAt.UTC(), n.ID)
	if err != nil {
		return fmt.Errorf("store: update note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Get returns a single note by ID.
func (db *DB) Get(ctx context.Context, id string) (*models.Note, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	return n, nil
}

// Delete removes a note.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// List returns a window of notes matching p, newest first, together with the
// total number of matching notes. Search matches title or content as a
// case-insensitive substring; an empty search matches everything.
func (db *DB) List(ctx context.Context, p ListParams) ([]models.Note, int, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(p.Search); s != "" {
		like := "%" + escapeLike(s) + "%"
		where = append(where, `(title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}
	if p.Tag != "" {
		where = append(where, `tag = ?`)
		args = append(args, string(p.Tag))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM notes`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count notes: %w", err)
	}

	limit := p.Limit
	if limit <= 0 {
		limit = 12
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes`+clause+` ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`,
		append(args, limit, max(p.Offset, 0))...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	out := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("store: scan note: %w", err)
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*models.Note, error) {
	var (
		n   models.Note
		tag string
	)
	if err := s.Scan(&n.ID, &n.Title, &n.Content, &tag, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.Tag = models.Tag(tag)
	return &n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
