// Package store provides the persistence layer for the genome hierarchy: an
// Engine that owns the connection pool, and Sessions that batch pending
// inserts, updates, and deletes and apply them atomically on commit.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inodb/genomic-db/internal/config"
)

// Engine is the session factory. It is safe for concurrent use; the
// sessions it creates are not.
type Engine struct {
	db     *gorm.DB
	driver Driver
	logger *zap.Logger
}

// Open creates an Engine for cfg.URL. No connection is dialed here;
// connections are taken from the pool on first use.
func Open(cfg config.Database, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	drv, dsn, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	dial, err := dialector(drv, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:                 NewGormLogger(logger, cfg.SlowQueryThreshold),
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true, // sessions own the transaction
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", drv, classify(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get connection pool: %w", err)
	}
	configurePool(sqlDB, cfg)

	logger.Debug("engine opened",
		zap.String("driver", string(drv)),
		zap.Int("max_open_conns", cfg.MaxOpenConns))

	return &Engine{db: db, driver: drv, logger: logger}, nil
}

func configurePool(sqlDB *sql.DB, cfg config.Database) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

// Driver reports which relational engine backs this Engine.
func (e *Engine) Driver() Driver {
	return e.driver
}

// DB returns the underlying *gorm.DB for direct access.
func (e *Engine) DB() *gorm.DB {
	return e.db
}

// Ping checks that a connection can be obtained from the pool.
func (e *Engine) Ping(ctx context.Context) error {
	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", e.driver, classifyAcquire(err))
	}
	return nil
}

// Close closes the connection pool.
func (e *Engine) Close() error {
	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewSession starts a unit of work bound to ctx. The caller must Close it.
func (e *Engine) NewSession(ctx context.Context) *Session {
	return &Session{
		db:     e.db.WithContext(ctx),
		logger: e.logger,
	}
}

// WithSession runs fn in a new session and commits if fn succeeds. The
// session is rolled back when fn returns an error or panics, and is closed
// on every path.
func (e *Engine) WithSession(ctx context.Context, fn func(*Session) error) (err error) {
	s := e.NewSession(ctx)
	defer func() {
		if r := recover(); r != nil {
			_ = s.Close()
			panic(r)
		}
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()

	if err := fn(s); err != nil {
		return err
	}
	return s.Commit()
}
