package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Error kinds surfaced at flush, commit, or connection acquisition. The
// driver error stays in the chain, so errors.As still reaches it.
var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrConnectivity        = errors.New("storage unreachable")
	ErrSessionClosed       = errors.New("session is closed")
	ErrUnsupportedDriver   = errors.New("unsupported database driver")
	ErrUnsupportedEntity   = errors.New("unsupported entity type")
)

// PostgreSQL SQLSTATE codes (class 23, integrity constraint violation).
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// classify tags err with the matching error kind. Unrecognized errors are
// returned unchanged.
func classify(err error) error {
	if err == nil || classified(err) {
		return err
	}
	switch {
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	case isConstraintViolation(err):
		return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
	case isConnectivity(err):
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	return err
}

// classifyAcquire is classify for connection acquisition, where a deadline
// means the pool could not hand out a connection in time.
func classifyAcquire(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !classified(err) {
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	return classify(err)
}

func classified(err error) bool {
	return errors.Is(err, ErrConstraintViolation) ||
		errors.Is(err, ErrForeignKeyViolation) ||
		errors.Is(err, ErrConnectivity)
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgCheckViolation, pgNotNullViolation:
			return true
		}
		return false
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// extended result codes keep the primary code in the low byte
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "CHECK constraint failed")
}

func isConnectivity(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CANTOPEN
	}
	return false
}
