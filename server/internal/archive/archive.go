// Package archive keeps a persistent record of completed downloads.
package archive

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Entry struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS archive (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			source     TEXT NOT NULL,
			path       TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record stores a completed download.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Id == "" {
		e.Id = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	slog.Info("archiving completed download",
		slog.String("title", e.Title),
		slog.String("source", e.Source),
	)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO archive (id, title, source, path, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Id, e.Title, e.Source, e.Path, e.CreatedAt,
	)
	return err
}

// All returns every archived download, newest first.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, source, path, created_at FROM archive ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Id, &e.Title, &e.Source, &e.Path, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
