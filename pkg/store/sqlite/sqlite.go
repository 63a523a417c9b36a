// Package sqlite implements the document store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"fieldagent/pkg/store"
)

// Store implements store.DocumentStore using SQLite.
type Store struct {
	db *sql.DB
}

// Verify interface compliance at compile time.
var _ store.DocumentStore = (*Store)(nil)

// New opens (or creates) a SQLite database at the given path and runs
// migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		topic TEXT PRIMARY KEY,
		content TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Put(ctx context.Context, doc *store.Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	doc.Topic = normalizeTopic(doc.Topic)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (topic, content, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(topic) DO UPDATE SET content=excluded.content, updated_at=excluded.updated_at`,
		doc.Topic, doc.Content, doc.CreatedAt, doc.UpdatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, topic string) (*store.Document, error) {
	doc := &store.Document{}
	err := s.db.QueryRowContext(ctx,
		`SELECT topic, content, created_at, updated_at FROM documents WHERE topic = ?`,
		normalizeTopic(topic),
	).Scan(&doc.Topic, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return doc, err
}

func (s *Store) List(ctx context.Context) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT topic, content, created_at, updated_at FROM documents ORDER BY topic ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var doc store.Document
		if err := rows.Scan(&doc.Topic, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) Delete(ctx context.Context, topic string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE topic = ?`, normalizeTopic(topic))
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func normalizeTopic(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}
