// Package sqlitestore provides a SQLite-backed score store.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sauerbraten/duelist/pkg/score"
)

const schema = `CREATE TABLE IF NOT EXISTS scores (
	metric TEXT NOT NULL,
	player TEXT NOT NULL,
	score  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (metric, player)
)`

// Store persists scores in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ score.Store = &Store{}

// Open opens (creating if needed) a SQLite score database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, eris.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "open sqlite db")
	}
	// all access happens from the tick loop anyway
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, eris.Wrap(err, "ping sqlite db")
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, eris.Wrap(err, "create scores table")
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Get(ctx context.Context, m score.Metric, player string) (int, error) {
	var v int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT score FROM scores WHERE metric = ? AND player = ?`,
		string(m), player,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "get %s of %s", m, player)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, m score.Metric, player string, value int) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO scores (metric, player, score) VALUES (?, ?, ?)
		 ON CONFLICT (metric, player) DO UPDATE SET score = excluded.score`,
		string(m), player, value,
	)
	return eris.Wrapf(err, "set %s of %s", m, player)
}

func (s *Store) Add(ctx context.Context, m score.Metric, player string, delta int) (int, error) {
	var v int
	err := s.sqlDB.QueryRowContext(ctx,
		`INSERT INTO scores (metric, player, score) VALUES (?, ?, ?)
		 ON CONFLICT (metric, player) DO UPDATE SET score = score + excluded.score
		 RETURNING score`,
		string(m), player, delta,
	).Scan(&v)
	if err != nil {
		return 0, eris.Wrapf(err, "add to %s of %s", m, player)
	}
	return v, nil
}

func (s *Store) Participants(ctx context.Context, m score.Metric) ([]score.Entry, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT player, score FROM scores WHERE metric = ? ORDER BY score DESC, player ASC`,
		string(m),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "list %s", m)
	}
	defer rows.Close()

	var entries []score.Entry
	for rows.Next() {
		var e score.Entry
		if err := rows.Scan(&e.Player, &e.Score); err != nil {
			return nil, eris.Wrapf(err, "scan %s", m)
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrapf(rows.Err(), "iterate %s", m)
}
