package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Manager 仓储管理器，提供所有仓储的统一访问接口
type Manager struct {
	db *gorm.DB

	// 仓储实例（使用懒加载）
	replayRunOnce sync.Once
	replayRun     ReplayRunRepository

	scriptRecordOnce sync.Once
	scriptRecord     ScriptRecordRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// DB 获取数据库实例
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// ReplayRun 回放任务仓储
func (m *Manager) ReplayRun() ReplayRunRepository {
	m.replayRunOnce.Do(func() {
		m.replayRun = NewReplayRunRepository(m.db)
	})
	return m.replayRun
}

// ScriptRecord 脚本记录仓储
func (m *Manager) ScriptRecord() ScriptRecordRepository {
	m.scriptRecordOnce.Do(func() {
		m.scriptRecord = NewScriptRecordRepository(m.db)
	})
	return m.scriptRecord
}

// WithTx 在事务中使用仓储
func (m *Manager) WithTx(ctx context.Context, fn func(tx *Manager) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewManager(tx))
	})
}
