package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"

	"github.com/inodb/genomic-db/internal/config"
)

func TestOpenRejectsUnsupportedURL(t *testing.T) {
	_, err := Open(config.Database{URL: "oracle://scott@db/orcl"}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestOpenDoesNotDial(t *testing.T) {
	eng, err := Open(config.Database{
		URL:          "postgresql+psycopg://nobody@127.0.0.1:1/genomics?sslmode=disable&connect_timeout=2",
		MaxOpenConns: 2,
	}, zap.NewNop())
	require.NoError(t, err)
	defer eng.Close()
	assert.Equal(t, DriverPostgres, eng.Driver())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.ErrorIs(t, eng.Ping(ctx), ErrConnectivity)

	s := eng.NewSession(ctx)
	defer s.Close()
	_, err = s.ListGenomes()
	assert.ErrorIs(t, err, ErrConnectivity)
}

func TestMigrateUpAndDown(t *testing.T) {
	eng := openTestEngine(t)
	ctx := context.Background()
	require.NoError(t, eng.Ping(ctx))

	version, err := eng.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, eng.Migrate(ctx), "up is idempotent")

	require.NoError(t, eng.MigrateDown(ctx))
	version, err = eng.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, eng.DB().Migrator().HasTable("genes"))

	require.NoError(t, eng.Migrate(ctx))
	assert.True(t, eng.DB().Migrator().HasTable("genes"))
}

func TestGormLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), 50*time.Millisecond)
	ctx := context.Background()
	stmt := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), stmt, nil)
	l.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	l.Trace(ctx, time.Now(), stmt, assert.AnError)
	l.Trace(ctx, time.Now(), stmt, gormlogger.ErrRecordNotFound)

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "statement", entries[0].Message)
	assert.Equal(t, "sql", entries[0].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "slow statement", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "SELECT 1", entries[2].ContextMap()["sql"])
	assert.Equal(t, zapcore.DebugLevel, entries[3].Level, "not found is not a failure")
}

func TestGormLoggerQuietAboveDebug(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewGormLogger(zap.New(core), 0)

	l.Trace(context.Background(), time.Now().Add(-time.Hour), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	assert.Zero(t, logs.Len())

	l.LogMode(gormlogger.Silent).Error(context.Background(), "dropped %d", 1)
	assert.Zero(t, logs.Len())
}
