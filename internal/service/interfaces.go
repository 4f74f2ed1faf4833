package service

import (
	"context"

	"github.com/wfunc/slot-replay/internal/game/slot"
	"github.com/wfunc/slot-replay/internal/models"
	"github.com/wfunc/slot-replay/internal/replay"
	"github.com/wfunc/slot-replay/internal/repository"
)

// ReplayService 脚本回放服务接口
type ReplayService interface {
	// 单盘面工具
	ValidateBoard(ctx context.Context, req *BoardRequest) error
	StepBoard(ctx context.Context, req *BoardRequest) (*StepResponse, error)

	// 回放
	RunFile(ctx context.Context, path string) (*RunResult, error)
	RunScripts(ctx context.Context, source string, set *replay.ScriptSet) (*RunResult, error)

	// 历史记录，未启用持久化时返回 ErrNotImplemented
	GetRun(ctx context.Context, runID string) (*models.ReplayRun, error)
	ListRuns(ctx context.Context, q models.ReplayRunQuery, page, pageSize int) ([]*models.ReplayRun, *repository.Pagination, error)
	ListScripts(ctx context.Context, q models.ScriptRecordQuery, page, pageSize int) ([]*models.ScriptRecord, *repository.Pagination, error)
	DeleteRun(ctx context.Context, runID string) error

	// Persistent 是否写入数据库
	Persistent() bool
}

// BoardRequest 单盘面请求
type BoardRequest struct {
	Variant  string     `json:"variant"`   // 为空时使用服务配置的变体
	GameType string     `json:"game_type"` // base | free，默认base
	Board    slot.Board `json:"board" binding:"required"`
}

// StepResponse 单步消除结果
type StepResponse struct {
	Board    slot.Board           `json:"board"`
	Score    float64              `json:"score"`
	HasMatch bool                 `json:"has_match"`
	Patterns []replay.PatternInfo `json:"patterns"`
	Terminal bool                 `json:"terminal"` // 消除下落后的盘面是否已无中奖
}

// RunResult 一次回放的结果
type RunResult struct {
	RunID  string            `json:"run_id"`
	Report *replay.Report    `json:"-"`
	Run    *models.ReplayRun `json:"run,omitempty"` // 未持久化时为nil
}
