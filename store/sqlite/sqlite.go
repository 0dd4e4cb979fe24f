/*
Package sqlite provides the SQLite-backed persistence for the fee engine.

PURPOSE:
  Two concerns live here:
  - session defaults: the carry-over record each form session keeps between
    recomputation passes (implements session.Store)
  - the proposal archive: every JSON export event is kept with its full
    document for later retrieval

KEY TABLES:
  sessions:   session_id -> defaults JSON, replaced wholesale on write
  proposals:  one row per export event, document stored as JSON text

WAL MODE:
  The database is opened with WAL for better read concurrency; a
  sync.RWMutex covers the driver-level races that remain.

USAGE:
  store, err := sqlite.New("./data/proposals.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - session/session.go: The Store interface implemented here
  - api/handlers.go: Archives proposals on JSON export
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/atelier/fee-engine/session"
)

// Store implements session.Store and the proposal archive using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// ":memory:" databases are per-connection; a single connection keeps the
	// schema visible to every query.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Session defaults, replaced wholesale on every write
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		defaults_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Proposal archive (append-only; one row per JSON export event)
	CREATE TABLE IF NOT EXISTS proposals (
		id TEXT PRIMARY KEY,
		project TEXT NOT NULL,
		client TEXT NOT NULL,
		region TEXT NOT NULL,
		typology TEXT NOT NULL,
		created_at TEXT NOT NULL,
		document_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_proposals_created_at ON proposals(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SESSION DEFAULTS - implements session.Store
// =============================================================================

// Get returns the remembered defaults for a session, nil when none exist.
func (s *Store) Get(ctx context.Context, sessionID string) (*session.Defaults, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT defaults_json FROM sessions WHERE session_id = ?`, sessionID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var d session.Defaults
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &d, nil
}

// Put stores the defaults for a session, replacing any prior record.
func (s *Store) Put(ctx context.Context, sessionID string, d session.Defaults) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, defaults_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			defaults_json = excluded.defaults_json,
			updated_at = excluded.updated_at
	`, sessionID, string(raw), d.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// =============================================================================
// PROPOSAL ARCHIVE
// =============================================================================

// ProposalRecord is one archived export event.
type ProposalRecord struct {
	ID           string
	Project      string
	Client       string
	Region       string
	Typology     string
	CreatedAt    time.Time
	DocumentJSON string
}

// SaveProposal archives one export event.
func (s *Store) SaveProposal(ctx context.Context, p ProposalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proposals (id, project, client, region, typology, created_at, document_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Project, p.Client, p.Region, p.Typology,
		p.CreatedAt.Format(time.RFC3339), p.DocumentJSON)
	if err != nil {
		return fmt.Errorf("save proposal %s: %w", p.ID, err)
	}
	return nil
}

// GetProposal returns one archived proposal, nil when absent.
func (s *Store) GetProposal(ctx context.Context, id string) (*ProposalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, project, client, region, typology, created_at, document_json
		FROM proposals WHERE id = ?
	`, id)

	p, err := scanProposal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load proposal %s: %w", id, err)
	}
	return p, nil
}

// ListProposals returns archived proposals, newest first.
func (s *Store) ListProposals(ctx context.Context, limit int) ([]ProposalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project, client, region, typology, created_at, document_json
		FROM proposals ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var out []ProposalRecord
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Reset clears all data. Dev/demo use only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"sessions", "proposals"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProposal(row scanner) (*ProposalRecord, error) {
	var p ProposalRecord
	var createdAt string
	if err := row.Scan(&p.ID, &p.Project, &p.Client, &p.Region, &p.Typology,
		&createdAt, &p.DocumentJSON); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	p.CreatedAt = t
	return &p, nil
}
