package store

import "github.com/jmoiron/sqlx"

// DB exposes the connection so tests can install failure triggers.
func (s *SQLiteStore) DB() *sqlx.DB { return s.db }
