package store

import "database/sql"

// conn is the narrow surface both *sqlx.DB and *sqlx.Tx satisfy, so every
// query helper below can run either standalone or inside WithTx without
// duplication — mirrors the teacher's persistence.DB methods operating
// directly on the one *sqlx.DB it holds.
type conn interface {
	Exec(query string, args ...any) (sql.Result, error)
	Get(dest any, query string, args ...any) error
	Select(dest any, query string, args ...any) error
}

func (s *Store) conn() conn { return s.db }
func (t *Tx) conn() conn    { return t.tx }
