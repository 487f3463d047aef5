// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens zombiezen SQLite connection pools with the
// pragmas every cartvault database uses.
//
// Each connection gets:
//
//   - journal_mode=WAL so readers never block the single writer.
//   - synchronous=FULL: the side-store is small and rarely written,
//     so an fsync per commit costs nothing noticeable.
//   - busy_timeout=5000 to wait for a write lock instead of failing.
//   - temp_store=MEMORY.
//
// Callers write SQL directly with sqlitex.Execute and wrap writes in
// sqlitex.ImmediateTransaction:
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path: filepath.Join(root, "data.db"),
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
package sqlitepool
