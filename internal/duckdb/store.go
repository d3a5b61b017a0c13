// Package duckdb exports genome hierarchies into a DuckDB file for
// analytical queries. The export is a denormalized snapshot: it carries no
// keys or foreign keys, and gene lengths are stored rather than derived.
// Row identity comes from the source database and is kept by replacing a
// genome's rows on every export.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Tables holds the names of the snapshot tables, in load order.
var Tables = []string{"genomes", "chromosomes", "genes", "export_metadata"}

// Store manages a DuckDB connection holding an exported snapshot.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create export directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS genomes (
			id BIGINT NOT NULL,
			name VARCHAR NOT NULL,
			description VARCHAR,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS chromosomes (
			id BIGINT NOT NULL,
			genome_id BIGINT NOT NULL,
			name VARCHAR NOT NULL,
			length BIGINT,
			created_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS genes (
			id BIGINT NOT NULL,
			chromosome_id BIGINT NOT NULL,
			name VARCHAR NOT NULL,
			start_position BIGINT NOT NULL,
			end_position BIGINT NOT NULL,
			length BIGINT NOT NULL,
			strand VARCHAR,
			sequence VARCHAR,
			created_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS export_metadata (
			key VARCHAR PRIMARY KEY,
			value VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of rows in one of the snapshot tables.
func (s *Store) Count(table string) (int64, error) {
	if !knownTable(table) {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int64
	if err := s.db.QueryRow("SELECT count(*) FROM " + table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Clear removes every exported row.
func (s *Store) Clear() error {
	for _, table := range Tables {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func knownTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}
