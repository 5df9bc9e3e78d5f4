// Package sqlite implements domain.Repository on top of modernc.org/sqlite,
// the pure-Go CGO-free driver. Durable counterpart to internal/infra/memstore.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/obscura-observatory/scheduler-analytics/internal/infra/dsa"
)

// DB wraps a *sql.DB with the migration set applied. seen is a Bloom
// filter over stored schedule checksums: a definite miss skips the dedup
// query on brand-new uploads. This process is the single writer of the
// database file, so the filter cannot go stale against a foreign insert.
type DB struct {
	db   *sql.DB
	seen *dsa.BloomFilter
}

// Open opens (creating if necessary) the sqlite database at path and applies
// all pending migrations. Use ":memory:" for an ephemeral database.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1) // modernc.org/sqlite: one writer at a time

	db := &DB{db: conn, seen: dsa.NewBloomFilter(4096, 0.001)}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := db.warmChecksumFilter(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("warm checksum filter: %w", err)
	}
	return db, nil
}

// warmChecksumFilter seeds the dedup filter with every stored checksum.
func (db *DB) warmChecksumFilter() error {
	rows, err := db.db.Query(`SELECT checksum FROM schedules`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var checksum string
		if err := rows.Scan(&checksum); err != nil {
			return err
		}
		db.seen.Add(checksum)
	}
	return rows.Err()
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) migrate() error {
	if _, err := db.db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return err
	}
	for _, stmt := range schemaMigrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %q: %w", stmt, err)
		}
	}
	return nil
}
