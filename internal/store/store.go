// Package store persists treepath sessions to SQLite. Markers and
// statement records are stored as (file, stable path) pairs so a restored
// session re-resolves nodes against fresh snapshots instead of holding
// stale references.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jward/treepath"
)

// Store is the SQLite data access layer for persisted sessions.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database at dbPath with WAL mode enabled and creates
// the schema when missing.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS sessions (
  id          TEXT PRIMARY KEY,
  saved_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS markers (
  session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  id          TEXT NOT NULL,
  label       TEXT,
  created_at  TIMESTAMP NOT NULL,
  file        TEXT,
  path        TEXT,
  seq         INTEGER NOT NULL,
  PRIMARY KEY (session_id, id)
);

CREATE TABLE IF NOT EXISTS statements (
  session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  id          TEXT NOT NULL,
  file        TEXT,
  path        TEXT,
  seq         INTEGER NOT NULL,
  PRIMARY KEY (session_id, id)
);

CREATE INDEX IF NOT EXISTS idx_markers_file    ON markers(session_id, file);
CREATE INDEX IF NOT EXISTS idx_statements_file ON statements(session_id, file);
`

// SaveSession replaces the persisted state for sessionID with the
// session's current markers and statements, atomically.
func (s *Store) SaveSession(sessionID string, session *treepath.Session) error {
	markers, stmts := session.Export()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save session: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("save session: clear: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO sessions (id, saved_at) VALUES (?, ?)`, sessionID, time.Now()); err != nil {
		return fmt.Errorf("save session: insert: %w", err)
	}
	for i, m := range markers {
		_, err := tx.Exec(
			`INSERT INTO markers (session_id, id, label, created_at, file, path, seq) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sessionID, m.ID, m.Label, m.CreatedAt, m.File, m.Path, i,
		)
		if err != nil {
			return fmt.Errorf("save session: marker %s: %w", m.ID, err)
		}
	}
	for i, st := range stmts {
		_, err := tx.Exec(
			`INSERT INTO statements (session_id, id, file, path, seq) VALUES (?, ?, ?, ?, ?)`,
			sessionID, st.ID, st.File, st.Path, i,
		)
		if err != nil {
			return fmt.Errorf("save session: statement %s: %w", st.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save session: commit: %w", err)
	}
	return nil
}

// LoadSession restores persisted markers and statements into session.
// Loading an unknown session id is not an error; it restores nothing.
func (s *Store) LoadSession(sessionID string, session *treepath.Session) error {
	rows, err := s.db.Query(
		`SELECT id, label, created_at, file, path FROM markers WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("load session: markers: %w", err)
	}
	defer rows.Close()

	var markers []treepath.Marker
	for rows.Next() {
		var m treepath.Marker
		if err := rows.Scan(&m.ID, &m.Label, &m.CreatedAt, &m.File, &m.Path); err != nil {
			return fmt.Errorf("load session: scan marker: %w", err)
		}
		markers = append(markers, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load session: markers: %w", err)
	}

	stmtRows, err := s.db.Query(
		`SELECT id, file, path FROM statements WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("load session: statements: %w", err)
	}
	defer stmtRows.Close()

	var stmts []treepath.Statement
	for stmtRows.Next() {
		var st treepath.Statement
		if err := stmtRows.Scan(&st.ID, &st.File, &st.Path); err != nil {
			return fmt.Errorf("load session: scan statement: %w", err)
		}
		stmts = append(stmts, st)
	}
	if err := stmtRows.Err(); err != nil {
		return fmt.Errorf("load session: statements: %w", err)
	}

	if err := session.Restore(markers, stmts); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	return nil
}

// Sessions lists persisted session ids, most recently saved first.
func (s *Store) Sessions() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM sessions ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list sessions: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}

// DeleteSession removes one persisted session and its records.
func (s *Store) DeleteSession(sessionID string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
