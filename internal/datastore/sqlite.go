package datastore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (resources, resource_sets, journals)
const currentSchemaVersion = 1

// SQLite is the durable DataStore implementation, backed by a single
// SQLite database in WAL mode.
type SQLite struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies
// pragmas and schema migrations. Idempotent: safe to call on an existing
// database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY on concurrent ingestion.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add implements DataStore. The resource's set memberships are mirrored
// into the resource_sets table so set-scoped listings stay indexed.
func (s *SQLite) Add(ctx context.Context, res oai.Resource) error {
	document, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("add resource %q: %w", res.RIdentifier, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add resource %q: %w", res.RIdentifier, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO resources (ridentifier, datestamp, document)
		VALUES (?, ?, ?)
		ON CONFLICT(ridentifier) DO UPDATE
		SET datestamp = excluded.datestamp, document = excluded.document
	`, res.RIdentifier, res.Datestamp, string(document))
	if err != nil {
		return fmt.Errorf("add resource %q: %w", res.RIdentifier, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM resource_sets WHERE ridentifier = ?`, res.RIdentifier); err != nil {
		return fmt.Errorf("add resource %q: %w", res.RIdentifier, err)
	}
	for _, spec := range res.SetSpec {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO resource_sets (ridentifier, setspec) VALUES (?, ?)
			ON CONFLICT(ridentifier, setspec) DO NOTHING
		`, res.RIdentifier, spec); err != nil {
			return fmt.Errorf("add resource %q: %w", res.RIdentifier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add resource %q: %w", res.RIdentifier, err)
	}
	return nil
}

// Get implements DataStore.
func (s *SQLite) Get(ctx context.Context, ridentifier string) (oai.Resource, error) {
	var document string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM resources WHERE ridentifier = ?`, ridentifier,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return oai.Resource{}, ErrNotFound
	}
	if err != nil {
		return oai.Resource{}, fmt.Errorf("get resource %q: %w", ridentifier, err)
	}
	return unmarshalResource(document)
}

// List implements DataStore. Ordering is always (datestamp, ridentifier)
// ascending so any offset/count window is deterministic; both date bounds
// are inclusive.
func (s *SQLite) List(ctx context.Context, q ListQuery, view View) ([]oai.Resource, error) {
	if view != nil {
		view(&q)
	}

	query := `SELECT document FROM resources WHERE 1=1`
	args := []any{}
	if q.From != "" {
		query += ` AND datestamp >= ?`
		args = append(args, q.From)
	}
	if q.Until != "" {
		query += ` AND datestamp <= ?`
		args = append(args, q.Until)
	}
	if q.SetSpec != "" {
		query += ` AND EXISTS (
			SELECT 1 FROM resource_sets rs
			WHERE rs.ridentifier = resources.ridentifier AND rs.setspec = ?
		)`
		args = append(args, q.SetSpec)
	}
	query += ` ORDER BY datestamp ASC, ridentifier ASC LIMIT ? OFFSET ?`
	args = append(args, q.Count, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	resources := []oai.Resource{}
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("list resources: %w", err)
		}
		res, err := unmarshalResource(document)
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

// AddJournal implements DataStore.
func (s *SQLite) AddJournal(ctx context.Context, j Journal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journals (lead_issn, title) VALUES (?, ?)
		ON CONFLICT(lead_issn) DO UPDATE SET title = excluded.title
	`, j.LeadISSN, j.Title)
	if err != nil {
		return fmt.Errorf("add journal %q: %w", j.LeadISSN, err)
	}
	return nil
}

// GetJournal implements DataStore.
func (s *SQLite) GetJournal(ctx context.Context, issn string) (Journal, error) {
	var j Journal
	err := s.db.QueryRowContext(ctx,
		`SELECT lead_issn, title FROM journals WHERE lead_issn = ?`, issn,
	).Scan(&j.LeadISSN, &j.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return Journal{}, ErrNotFound
	}
	if err != nil {
		return Journal{}, fmt.Errorf("get journal %q: %w", issn, err)
	}
	return j, nil
}

// ListJournals implements DataStore.
func (s *SQLite) ListJournals(ctx context.Context, offset, count int) ([]Journal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT lead_issn, title FROM journals
		ORDER BY lead_issn ASC LIMIT ? OFFSET ?
	`, count, offset)
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	defer rows.Close()

	journals := []Journal{}
	for rows.Next() {
		var j Journal
		if err := rows.Scan(&j.LeadISSN, &j.Title); err != nil {
			return nil, fmt.Errorf("list journals: %w", err)
		}
		journals = append(journals, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	return journals, nil
}

func unmarshalResource(document string) (oai.Resource, error) {
	var res oai.Resource
	if err := json.Unmarshal([]byte(document), &res); err != nil {
		return oai.Resource{}, fmt.Errorf("decode resource document: %w", err)
	}
	return res, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and stamps the schema
// version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
