package database

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/slot-replay/internal/errors"
	"github.com/wfunc/slot-replay/internal/logger"
)

// 迁移锁参数
const (
	lockAttempts   = 30
	lockRetryDelay = time.Second
	lockStaleAfter = 5 * time.Minute
)

// acquireMigrationLock 获取迁移锁
func acquireMigrationLock(dbPath string) (*os.File, error) {
	lockPath := dbPath + ".migration.lock"

	// 尝试创建锁文件（独占模式）
	for i := 0; i < lockAttempts; i++ {
		lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
		if err == nil {
			logger.Debug("获取迁移锁成功", zap.String("lock", lockPath))
			return lockFile, nil
		}

		// 锁文件过旧时直接清理
		if info, err := os.Stat(lockPath); err == nil && time.Since(info.ModTime()) > lockStaleAfter {
			logger.Warn("迁移锁文件过期，尝试删除", zap.String("lock", lockPath))
			_ = os.Remove(lockPath)
			continue
		}

		logger.Debug("等待迁移锁...", zap.Int("attempt", i+1))
		time.Sleep(lockRetryDelay)
	}

	return nil, errors.Newf(errors.ErrTimeout, "无法获取迁移锁，可能有其他进程正在执行迁移: %s", lockPath)
}

// releaseMigrationLock 释放迁移锁
func releaseMigrationLock(lockFile *os.File) {
	if lockFile == nil {
		return
	}

	lockPath := lockFile.Name()
	_ = lockFile.Close()
	_ = os.Remove(lockPath)
	logger.Debug("释放迁移锁", zap.String("lock", lockPath))
}

// getDBPath SQLite数据库文件路径，内存库及其他驱动返回空串
func getDBPath(db *gorm.DB) string {
	if db == nil || db.Dialector.Name() != "sqlite" {
		return ""
	}

	sqlDB, err := db.DB()
	if err != nil {
		return ""
	}
	row := sqlDB.QueryRow("PRAGMA database_list")
	var seq int
	var name, file string
	if err := row.Scan(&seq, &name, &file); err != nil {
		return ""
	}
	return file
}

// CleanupStaleLocks 清理过期的锁文件
func CleanupStaleLocks() {
	patterns := []string{
		"./data/*.lock",
		"./*.lock",
	}

	for _, pattern := range patterns {
		matches, _ := filepath.Glob(pattern)
		for _, lockFile := range matches {
			if info, err := os.Stat(lockFile); err == nil && time.Since(info.ModTime()) > 2*lockStaleAfter {
				logger.Info("清理过期锁文件", zap.String("file", lockFile))
				_ = os.Remove(lockFile)
			}
		}
	}
}
