package store

import (
	"fmt"
	"net/url"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Driver identifies the relational engine behind a connection URL.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// sqlitePragmas are applied to every pooled SQLite connection. Foreign keys
// are off by default in SQLite.
var sqlitePragmas = []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}

// ParseURL resolves a connection URL into a driver and the DSN that driver
// expects. SQLAlchemy-style driver suffixes ("postgresql+psycopg://") are
// accepted and dropped.
func ParseURL(raw string) (Driver, string, error) {
	raw = strings.TrimSpace(raw)
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		if strings.HasPrefix(raw, "file:") {
			return DriverSQLite, withPragmas(raw), nil
		}
		return "", "", fmt.Errorf("%w: %q has no scheme", ErrUnsupportedDriver, raw)
	}

	base, _, _ := strings.Cut(strings.ToLower(scheme), "+")
	switch base {
	case "postgres", "postgresql":
		dsn := "postgres://" + rest
		if _, err := url.Parse(dsn); err != nil {
			return "", "", fmt.Errorf("parse postgres url: %w", err)
		}
		return DriverPostgres, dsn, nil
	case "sqlite":
		// sqlite:///abs/path keeps its leading slash, sqlite://rel/path is relative
		path := rest
		if path == "" || path == ":memory:" || strings.HasPrefix(path, ":memory:?") {
			path = "file::memory:?cache=shared"
		}
		return DriverSQLite, withPragmas(path), nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedDriver, scheme)
	}
}

func withPragmas(dsn string) string {
	var add []string
	for _, p := range sqlitePragmas {
		name, _, _ := strings.Cut(strings.TrimPrefix(p, "_pragma="), "(")
		if !strings.Contains(dsn, name) {
			add = append(add, p)
		}
	}
	if len(add) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(add, "&")
}

func dialector(driver Driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.New(postgres.Config{DSN: dsn}), nil
	case DriverSQLite:
		return sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
}

func (d Driver) gooseDialect() string {
	if d == DriverSQLite {
		return "sqlite3"
	}
	return string(d)
}
