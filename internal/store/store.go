// Package store is the single transactional persistence layer for every
// other subsystem. It is the only package that issues SQL; every row in
// design doc Section 3 lives here. See design doc Section 4.A.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// schemaVersion is the current additive-migration ladder head. Bump and
// add a step to migrationSteps — never drop, rename, or change a column type.
const schemaVersion = 10

// Store wraps a SQLite connection for Abydos world/game state, following
// the teacher's persistence.DB shape (a thin struct around *sqlx.DB).
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the SQLite file at path and applies migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir data dir: %w", err)
		}
	}

	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	conn.SetMaxOpenConns(1) // single-writer SQLite file; avoid SQLITE_BUSY storms

	s := &Store{db: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// Tx is a transaction handle passed to callbacks running inside
// WithTx. It exposes the same Exec/Get/Select surface as Store so query
// helpers can be written once and used both in and out of a transaction.
type Tx struct {
	tx *sqlx.Tx
}

// WithTx runs fn inside a BEGIN IMMEDIATE transaction, committing on a
// nil return and rolling back on any error or panic. Every multi-row
// invariant in this codebase (craft, repay, claim, exploration) must be
// wrapped in exactly one WithTx call. Mirrors yume_db.py's
// `transaction()` context manager.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err = fn(&Tx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func nowEpoch() int64 { return time.Now().Unix() }

func (s *Store) migrate() error {
	return s.WithTx(context.Background(), func(tx *Tx) error {
		if _, err := tx.tx.Exec(`
			CREATE TABLE IF NOT EXISTS schema_meta (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at INTEGER NOT NULL
			);
		`); err != nil {
			return err
		}

		var current int
		row := tx.tx.QueryRow(`SELECT value FROM schema_meta WHERE key='schema_version'`)
		var val string
		if err := row.Scan(&val); err == nil {
			fmt.Sscanf(val, "%d", &current)
		}

		for _, step := range migrationSteps {
			if current < step.version {
				if err := step.up(tx.tx); err != nil {
					return fmt.Errorf("migration v%d: %w", step.version, err)
				}
			}
		}

		now := nowEpoch()
		_, err := tx.tx.Exec(`
			INSERT INTO schema_meta(key, value, updated_at) VALUES('schema_version', ?, ?)
			ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
		`, fmt.Sprintf("%d", schemaVersion), now)
		return err
	})
}

type migrationStep struct {
	version int
	up      func(tx execer) error
}

// execer is satisfied by both *sqlx.Tx and *sqlx.DB, matching the
// teacher's habit of passing the narrowest interface a helper needs.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}
