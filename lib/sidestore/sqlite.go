// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sidestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/cartvault/cartvault/lib/clock"
	"github.com/cartvault/cartvault/lib/codec"
	"github.com/cartvault/cartvault/lib/sqlitepool"
)

// DatabaseName is the SQLite side-store file inside the storage root.
const DatabaseName = "data.db"

const schema = `
CREATE TABLE IF NOT EXISTS attributes (
	digest     TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLiteStore is the transactional backend.
type SQLiteStore struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

// OpenSQLiteStore opens (creating if needed) <root>/data.db.
func OpenSQLiteStore(root string, clk clock.Clock, logger *slog.Logger) (*SQLiteStore, error) {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating side-store directory: %w", err)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   filepath.Join(root, DatabaseName),
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opening side-store database: %w", err)
	}

	return &SQLiteStore{pool: pool, clock: clk, logger: logger}, nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string {
	return s.pool.Path()
}

func (s *SQLiteStore) Get(ctx context.Context, digest string) (map[string]string, bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("side-store get: %w", err)
	}
	defer s.pool.Put(conn)

	var (
		encoded []byte
		found   bool
	)
	err = sqlitex.Execute(conn, "SELECT value FROM attributes WHERE digest = ?", &sqlitex.ExecOptions{
		Args: []any{digest},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			encoded = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, encoded)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("side-store get %s: %w", digest, err)
	}
	if !found {
		return nil, false, nil
	}

	attributes, err := decodeAttributes(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("side-store get %s: %w", digest, err)
	}
	return attributes, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, digest string, attributes map[string]string) (err error) {
	if digest == "" {
		return fmt.Errorf("side-store put: digest is required")
	}

	encoded, err := codec.Marshal(cloneAttributes(attributes))
	if err != nil {
		return fmt.Errorf("encoding attributes for %s: %w", digest, err)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("side-store put: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("side-store put: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn, `
		INSERT INTO attributes (digest, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(digest) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{
			Args: []any{digest, encoded, s.clock.Now().UnixNano()},
		})
	if err != nil {
		return fmt.Errorf("side-store put %s: %w", digest, err)
	}

	s.logger.Debug("side-store entry written", "digest", digest)
	return nil
}

func (s *SQLiteStore) All(ctx context.Context) (map[string]map[string]string, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("side-store list: %w", err)
	}
	defer s.pool.Put(conn)

	table := make(map[string]map[string]string)
	err = sqlitex.Execute(conn, "SELECT digest, value FROM attributes", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			digest := stmt.ColumnText(0)
			encoded := make([]byte, stmt.ColumnLen(1))
			stmt.ColumnBytes(1, encoded)
			attributes, err := decodeAttributes(encoded)
			if err != nil {
				return fmt.Errorf("entry %s: %w", digest, err)
			}
			table[digest] = attributes
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("side-store list: %w", err)
	}
	return table, nil
}

// UpdatedAt returns the Unix-nanosecond timestamp of the last Put for
// digest, or false when the digest has no entry.
func (s *SQLiteStore) UpdatedAt(ctx context.Context, digest string) (int64, bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("side-store updated_at: %w", err)
	}
	defer s.pool.Put(conn)

	var (
		updatedAt int64
		found     bool
	)
	err = sqlitex.Execute(conn, "SELECT updated_at FROM attributes WHERE digest = ?", &sqlitex.ExecOptions{
		Args: []any{digest},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			updatedAt = stmt.ColumnInt64(0)
			found = true
			return nil
		},
	})
	if err != nil {
		return 0, false, fmt.Errorf("side-store updated_at %s: %w", digest, err)
	}
	return updatedAt, found, nil
}

func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}

func decodeAttributes(encoded []byte) (map[string]string, error) {
	var attributes map[string]string
	if err := codec.Unmarshal(encoded, &attributes); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	if attributes == nil {
		attributes = map[string]string{}
	}
	return attributes, nil
}
