package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/slot-replay/internal/errors"
	"github.com/wfunc/slot-replay/internal/logger"
	"github.com/wfunc/slot-replay/internal/models"
)

// migrationModels 需要迁移的模型
func migrationModels() []interface{} {
	return []interface{}{
		&models.ReplayRun{},
		&models.ScriptRecord{},
	}
}

// AutoMigrate 迁移全局数据库
func AutoMigrate() error {
	if DB == nil {
		return errors.New(errors.ErrDatabaseMigration, "数据库未初始化")
	}

	// 清理过期锁文件
	CleanupStaleLocks()

	// 获取迁移锁，避免多个进程同时迁移
	if dbPath := getDBPath(DB); dbPath != "" {
		lockFile, err := acquireMigrationLock(dbPath)
		if err != nil {
			logger.Error("无法获取迁移锁", zap.Error(err))
			return errors.Wrap(err, errors.ErrDatabaseMigration, "获取迁移锁失败")
		}
		defer releaseMigrationLock(lockFile)
	}

	return Migrate(DB)
}

// Migrate 迁移表结构
func Migrate(db *gorm.DB) error {
	logger.Info("开始数据库迁移...")

	for _, model := range migrationModels() {
		if err := db.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return errors.Wrapf(err, errors.ErrDatabaseMigration, "迁移 %T 失败", model)
		}
		logger.Debug("迁移成功", zap.String("model", fmt.Sprintf("%T", model)))
	}

	createIndexes(db)

	logger.Info("数据库迁移完成")
	return nil
}

// createIndexes 创建标签之外的索引
func createIndexes(db *gorm.DB) {
	indexes := map[string]string{
		"idx_replay_runs_created_at":  "CREATE INDEX IF NOT EXISTS idx_replay_runs_created_at ON replay_runs(created_at)",
		"idx_script_records_mismatch": "CREATE INDEX IF NOT EXISTS idx_script_records_mismatch ON script_records(run_id, mismatch)",
	}
	for name, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			logger.Warn("创建索引失败", zap.String("index", name), zap.Error(err))
		}
	}
}

// DropAllTables 删除所有表（仅用于测试环境）
func DropAllTables(db *gorm.DB) error {
	tables := migrationModels()
	// 先删除被引用的子表
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			logger.Error("删除表失败", zap.String("model", fmt.Sprintf("%T", tables[i])), zap.Error(err))
			return errors.Wrap(err, errors.ErrDatabaseMigration)
		}
	}
	logger.Info("所有表已删除")
	return nil
}
