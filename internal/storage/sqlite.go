package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/xtding233/pack-sim/internal/collection"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL
)`

// SQLite stores the blob as one row of a key/value table.
type SQLite struct {
	db  *sql.DB
	key string
}

// OpenSQLite opens dsn (a path or ":memory:") and creates the table.
func OpenSQLite(ctx context.Context, dsn, key string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// one connection, so ":memory:" is a single database
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, kvSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create kv table")
	}
	return NewSQLite(db, key), nil
}

// NewSQLite uses an open database whose kv table already exists.
func NewSQLite(db *sql.DB, key string) *SQLite {
	if key == "" {
		key = DefaultKey
	}
	return &SQLite{db: db, key: key}
}

func (s *SQLite) Load(ctx context.Context) (collection.State, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", s.key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return collection.State{}, collection.ErrStateNotFound
		}
		return collection.State{}, errors.Wrapf(err, "get %s", s.key)
	}
	return decode([]byte(value))
}

func (s *SQLite) Save(ctx context.Context, state collection.State) error {
	b, err := collection.EncodeState(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.key, string(b), time.Now().UTC())
	if err != nil {
		return errors.Wrapf(err, "set %s", s.key)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
