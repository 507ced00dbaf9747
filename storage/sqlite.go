package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// SQLiteStore keeps each leaderboard as ranked rows in a high_scores table
type SQLiteStore struct {
	db  *sql.DB
	key string
}

// OpenSQLite opens or creates the database at path and runs migrations
func OpenSQLite(ctx context.Context, path, key string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // single writer

	s := &SQLiteStore{db: db, key: key}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// sqliteDSN builds a file: URI, escaping path so '?', '#' and '%' stay part of the name
func sqliteDSN(path string) string {
	u := url.URL{Path: path}
	return "file:" + u.EscapedPath() + "?_pragma=busy_timeout(5000)"
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS high_scores (
			board TEXT NOT NULL,
			rank  INTEGER NOT NULL,
			score INTEGER NOT NULL,
			PRIMARY KEY (board, rank)
		);`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Load(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT score FROM high_scores WHERE board = ? ORDER BY rank`, s.key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []int{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		entries = append(entries, v)
	}
	return entries, rows.Err()
}

// Save replaces the whole list in one transaction
func (s *SQLiteStore) Save(ctx context.Context, entries []int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM high_scores WHERE board = ?`, s.key); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO high_scores (board, rank, score) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, v := range entries {
		if _, err := stmt.ExecContext(ctx, s.key, i, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
