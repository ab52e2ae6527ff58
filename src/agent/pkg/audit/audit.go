// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// Package audit records enforcement decisions in a local SQLite
// database. Only decisions are persisted; the rule table itself is
// memory-only and rebuilt from scratch on every start.
package audit

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/enforce"
)

// Entry is one recorded enforcement decision.
type Entry struct {
	ID       int64     `json:"id"`
	Time     time.Time `json:"time"`
	UID      uint32    `json:"uid"`
	PID      uint32    `json:"pid"`
	Comm     string    `json:"comm"`
	Path     string    `json:"path"`
	Decision string    `json:"decision"`
}

// Sink defines the interface for decision recording.
type Sink interface {
	enforce.Observer

	// Recent returns up to limit entries, newest first.
	Recent(limit int) ([]Entry, error)

	// Close closes the underlying database.
	Close() error
}

// SQLiteSink implements Sink using a SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

// Ensure SQLiteSink implements Sink
var _ Sink = (*SQLiteSink)(nil)

// NewSQLiteSink creates a new SQLite audit sink.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	sink := &SQLiteSink{db: db}
	if err := sink.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	log.Infof("Audit sink initialized: %s", dbPath)
	return sink, nil
}

// initSchema creates the decisions table if it doesn't exist
func (s *SQLiteSink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at DATETIME NOT NULL,
		uid INTEGER NOT NULL,
		pid INTEGER NOT NULL,
		comm TEXT NOT NULL,
		path TEXT NOT NULL,
		decision TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_uid ON decisions(uid);
	CREATE INDEX IF NOT EXISTS idx_decisions_decision ON decisions(decision);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ObserveDecision appends one decision record. Failures are logged and
// swallowed: the audit trail must never fail the enforcement path.
func (s *SQLiteSink) ObserveDecision(ev enforce.Event, c enforce.Classification) {
	query := `
	INSERT INTO decisions (at, uid, pid, comm, path, decision)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		time.Now().UTC(),
		ev.UID,
		ev.PID,
		ev.Comm,
		ev.Path,
		c.String(),
	)
	if err != nil {
		log.Warnf("Failed to record decision for uid %d: %v", ev.UID, err)
	}
}

// Recent returns up to limit decisions, newest first.
func (s *SQLiteSink) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
	SELECT id, at, uid, pid, comm, path, decision
	FROM decisions
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Time, &e.UID, &e.PID, &e.Comm, &e.Path, &e.Decision); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decisions: %w", err)
	}

	return entries, nil
}

// Count returns the total number of recorded decisions.
func (s *SQLiteSink) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM decisions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count decisions: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
