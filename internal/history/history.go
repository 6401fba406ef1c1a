// Package history journals successful copies to a SQLite database under
// the state directory, so past transfers survive restarts and can be
// listed later. The journal is strictly best-effort: every failure is
// logged and swallowed, a broken journal must never block a copy batch.
package history

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/ren/shuttle/internal/log"
)

const dbFileName = "transfers.db"

// Transfer is one journaled copy.
type Transfer struct {
	ID         int64
	OriginPath string
	Basename   string
	DestPath   string
	Bytes      int64
	CopiedAt   time.Time
}

// Journal records copies into SQLite. A nil *Journal is valid and
// records nothing, so callers never need to branch on whether history
// is available.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the transfer database under stateDir
// and ensures the schema exists.
func Open(stateDir string) (*Journal, error) {
	path := filepath.Join(stateDir, dbFileName)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transfer database: %w", err)
	}

	_, err = db.Exec("PRAGMA busy_timeout = 5000;")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure transfer database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS transfers (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  origin_path TEXT NOT NULL,
  basename    TEXT NOT NULL,
  dest_path   TEXT NOT NULL,
  bytes       INTEGER NOT NULL,
  copied_at   TEXT NOT NULL
);`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create transfers table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS transfers_copied_at_idx ON transfers(copied_at);`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to index transfers table: %w", err)
	}

	return &Journal{db: db}, nil
}

// RecordCopy journals one successful copy. Errors are logged, never
// returned; the copy already happened and must not be un-reported over
// a bookkeeping failure.
func (j *Journal) RecordCopy(originPath, basename, destPath string, bytes int64, copiedAt time.Time) {
	if j == nil {
		return
	}

	_, err := j.db.Exec(
		`INSERT INTO transfers (origin_path, basename, dest_path, bytes, copied_at) VALUES (?, ?, ?, ?, ?)`,
		originPath, basename, destPath, bytes, copiedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		log.WithComponent("history").Warn("failed to journal copy", "path", originPath, "error", err)
	}
}

// Recent returns the most recent transfers, newest first, up to limit.
func (j *Journal) Recent(limit int) ([]Transfer, error) {
	if j == nil {
		return nil, nil
	}

	rows, err := j.db.Query(
		`SELECT id, origin_path, basename, dest_path, bytes, copied_at
		 FROM transfers ORDER BY copied_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var transfers []Transfer

	for rows.Next() {
		var (
			transfer Transfer
			copiedAt string
		)

		err = rows.Scan(&transfer.ID, &transfer.OriginPath, &transfer.Basename,
			&transfer.DestPath, &transfer.Bytes, &copiedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer row: %w", err)
		}

		transfer.CopiedAt, err = time.Parse(time.RFC3339Nano, copiedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transfer timestamp: %w", err)
		}

		transfers = append(transfers, transfer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", err)
	}

	return transfers, nil
}

// Close closes the underlying database. Safe on nil.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}

	return j.db.Close()
}
