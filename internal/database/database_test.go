package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/slot-replay/internal/config"
	"github.com/wfunc/slot-replay/internal/errors"
	"github.com/wfunc/slot-replay/internal/models"
)

func memoryConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxIdleConns: 2,
		MaxOpenConns: 10,
		LogLevel:     "silent",
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"})
	assert.True(t, errors.Is(err, errors.ErrDatabaseConnect))
}

func TestOpenAndMigrate(t *testing.T) {
	db, err := Open(memoryConfig())
	require.NoError(t, err)
	require.NoError(t, Ping(db))

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.ReplayRun{}))
	assert.True(t, db.Migrator().HasTable(&models.ScriptRecord{}))
	assert.Empty(t, getDBPath(db), "内存库不需要迁移锁")

	// 再次迁移不报错
	require.NoError(t, Migrate(db))

	require.NoError(t, DropAllTables(db))
	assert.False(t, db.Migrator().HasTable(&models.ReplayRun{}))
}

func TestInitFileDatabase(t *testing.T) {
	cfg := memoryConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "replay.db")
	cfg.MaxOpenConns = 4

	require.NoError(t, Init(cfg))
	t.Cleanup(func() { _ = Close(); DB = nil })

	assert.True(t, IsConnected())
	assert.Equal(t, DB, GetDB())
	assert.Equal(t, cfg.DSN, getDBPath(DB))

	require.NoError(t, AutoMigrate())
	assert.NoFileExists(t, cfg.DSN+".migration.lock", "迁移完成后释放锁")

	mode, err := JournalMode(DB)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)

	// 连接池中每个连接上的事务都能提交
	for i := 0; i < 8; i++ {
		runID := fmt.Sprintf("run-%d", i)
		err := Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&models.ReplayRun{RunID: runID, Variant: "ways"}).Error; err != nil {
				return err
			}
			return tx.Create(&models.ScriptRecord{RunID: runID, GameType: "base", ScriptIndex: i}).Error
		})
		require.NoError(t, err, runID)
	}

	var count int64
	require.NoError(t, DB.Model(&models.ReplayRun{}).Count(&count).Error)
	assert.Equal(t, int64(8), count)
	require.NoError(t, DB.Model(&models.ScriptRecord{}).Count(&count).Error)
	assert.Equal(t, int64(8), count)
}

func TestSQLiteDSN(t *testing.T) {
	cfg := memoryConfig()
	assert.Equal(t, ":memory:", sqliteDSN(cfg))

	cfg.DSN = "data/replay.db"
	assert.Equal(t, "data/replay.db?_journal_mode=WAL&_busy_timeout=5000", sqliteDSN(cfg))

	cfg.DSN = "data/replay.db?_busy_timeout=100"
	assert.Equal(t, cfg.DSN, sqliteDSN(cfg), "保留显式参数")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, ParseLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, ParseLogLevel("error"))
	assert.Equal(t, gormlogger.Info, ParseLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, ParseLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, ParseLogLevel(""))
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn)
	ctx := context.Background()

	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), sql, nil)
	assert.Equal(t, 0, logs.Len(), "warn级别不记录普通SQL")

	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "记录不存在不算错误")

	l.Trace(ctx, time.Now(), sql, assert.AnError)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "SQL执行错误", logs.All()[0].Message)

	l.Trace(ctx, time.Now().Add(-2*time.Second), sql, nil)
	assert.Equal(t, 1, logs.FilterMessage("SQL执行缓慢").Len())

	verbose := l.LogMode(gormlogger.Info)
	verbose.Trace(ctx, time.Now(), sql, nil)
	assert.Equal(t, 1, logs.FilterMessage("SQL执行").Len())

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), sql, assert.AnError)
	assert.Equal(t, 1, logs.FilterMessage("SQL执行错误").Len(), "静默模式不记录")
}
