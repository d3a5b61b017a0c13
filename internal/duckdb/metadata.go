package duckdb

import (
	"fmt"
	"strconv"
	"time"
)

// Snapshot records where an export came from.
type Snapshot struct {
	SourceDriver  string
	SchemaVersion int64
	Genomes       int
	ExportedAt    time.Time
}

// WriteSnapshot stores snapshot metadata, replacing any earlier values.
func (s *Store) WriteSnapshot(snap Snapshot) error {
	entries := []struct{ key, val string }{
		{"source_driver", snap.SourceDriver},
		{"schema_version", strconv.FormatInt(snap.SchemaVersion, 10)},
		{"genomes", strconv.Itoa(snap.Genomes)},
		{"exported_at", snap.ExportedAt.UTC().Format(time.RFC3339Nano)},
	}
	for _, e := range entries {
		if _, err := s.db.Exec(
			"INSERT OR REPLACE INTO export_metadata (key, value) VALUES (?, ?)", e.key, e.val,
		); err != nil {
			return fmt.Errorf("write metadata %s: %w", e.key, err)
		}
	}
	return nil
}

// ReadSnapshot returns the stored snapshot metadata. The boolean is false
// when nothing has been exported yet.
func (s *Store) ReadSnapshot() (Snapshot, bool, error) {
	rows, err := s.db.Query("SELECT key, value FROM export_metadata")
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Snapshot{}, false, fmt.Errorf("scan metadata: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, false, fmt.Errorf("iterate metadata: %w", err)
	}
	if len(meta) == 0 {
		return Snapshot{}, false, nil
	}

	snap := Snapshot{SourceDriver: meta["source_driver"]}
	if snap.SchemaVersion, err = strconv.ParseInt(meta["schema_version"], 10, 64); err != nil {
		return Snapshot{}, false, fmt.Errorf("parse schema_version: %w", err)
	}
	if snap.Genomes, err = strconv.Atoi(meta["genomes"]); err != nil {
		return Snapshot{}, false, fmt.Errorf("parse genomes: %w", err)
	}
	if snap.ExportedAt, err = time.Parse(time.RFC3339Nano, meta["exported_at"]); err != nil {
		return Snapshot{}, false, fmt.Errorf("parse exported_at: %w", err)
	}
	return snap, true, nil
}
