// Package localstore is the CLI's writable local state (spec §6 "Local
// writable state"): a second ncruces/go-sqlite3 handle, opened read-write
// with write-ahead logging, storing workflow-version snapshot history
// (distinct from the read-only bundled catalog.Store). Grounded on
// internal/storage/sqlite's schema.go declarative-schema style, adapted
// from the teacher's issue-tracker tables to this CLI's snapshot history.
package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/n8n-cli/wf/internal/apperr"
)

// Store is the single-writer handle over the local data.db (spec §5
// "Shared resources": "a single process owns it; closing performs a
// checkpoint").
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at path in
// read-write, write-ahead-logging mode and applies schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "opening local store", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperr.Wrap(apperr.Internal, "local store unreachable", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, apperr.Wrap(apperr.Internal, "applying local store schema", err)
	}
	return &Store{db: db}, nil
}

// Close checkpoints the WAL into the main database file and releases the
// handle (spec §5: "closing performs a checkpoint").
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	_, _ = s.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`)
	return s.db.Close()
}

// Snapshot is one recorded workflow-version snapshot.
type Snapshot struct {
	ID         int64
	WorkflowID string
	Name       string
	Operation  string
	Content    string
	CreatedAt  string
}

// RecordSnapshot persists one workflow-version snapshot, taken alongside
// (not instead of) the lifecycle package's pre-mutation JSON backup — the
// backup is a recovery artifact on disk, this table is the queryable
// history `wf history` reads from.
func (s *Store) RecordSnapshot(ctx context.Context, workflowID, name, operation, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workflow_snapshots (workflow_id, name, operation, content)
		VALUES (?, ?, ?, ?)`, workflowID, name, operation, content)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "recording workflow snapshot", err)
	}
	return nil
}

// ListSnapshots returns snapshots for workflowID, most recent first,
// bounded by limit (0 means no limit).
func (s *Store) ListSnapshots(ctx context.Context, workflowID string, limit int) ([]Snapshot, error) {
	query := `
		SELECT id, workflow_id, name, operation, content, created_at
		FROM workflow_snapshots
		WHERE workflow_id = ?
		ORDER BY created_at DESC, id DESC`
	args := []any{workflowID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "listing workflow snapshots", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var sn Snapshot
		if err := rows.Scan(&sn.ID, &sn.WorkflowID, &sn.Name, &sn.Operation, &sn.Content, &sn.CreatedAt); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "scanning workflow snapshot", err)
		}
		out = append(out, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "iterating workflow snapshots", err)
	}
	return out, nil
}

// LatestSnapshot returns the most recent snapshot for workflowID, or false
// if none exist.
func (s *Store) LatestSnapshot(ctx context.Context, workflowID string) (Snapshot, bool, error) {
	snaps, err := s.ListSnapshots(ctx, workflowID, 1)
	if err != nil {
		return Snapshot{}, false, err
	}
	if len(snaps) == 0 {
		return Snapshot{}, false, nil
	}
	return snaps[0], true, nil
}

// WorkflowIDs returns the distinct workflow ids with recorded snapshots,
// sorted ascending (supplemented `wf history --list` convenience).
func (s *Store) WorkflowIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT workflow_id FROM workflow_snapshots`)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "listing tracked workflows", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "scanning workflow id", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
