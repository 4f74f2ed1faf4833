package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReplayRunStatus 回放任务状态
type ReplayRunStatus string

const (
	ReplayRunRunning   ReplayRunStatus = "running"
	ReplayRunCompleted ReplayRunStatus = "completed"
	ReplayRunFailed    ReplayRunStatus = "failed"
)

// runTransitions 任务状态允许的转换
var runTransitions = map[ReplayRunStatus][]ReplayRunStatus{
	ReplayRunRunning: {ReplayRunCompleted, ReplayRunFailed},
}

// ReplayRun 一次脚本回放任务
type ReplayRun struct {
	BaseModel

	RunID   string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"run_id"`
	Variant string          `gorm:"type:varchar(20);index;not null" json:"variant"` // cluster | ways
	Source  string          `gorm:"type:varchar(255)" json:"source"`                // 脚本来源（文件名）
	Status  ReplayRunStatus `gorm:"type:varchar(20);index;default:running" json:"status"`

	BaseScripts int `gorm:"default:0" json:"base_scripts"`
	FreeScripts int `gorm:"default:0" json:"free_scripts"`
	Failed      int `gorm:"default:0" json:"failed"`

	PayoutMismatches    int `gorm:"default:0" json:"payout_mismatches"`
	StopMismatches      int `gorm:"default:0" json:"stop_mismatches"`
	CascadingMismatches int `gorm:"default:0" json:"cascading_mismatches"`
	TerminalLastBoard   int `gorm:"default:0" json:"terminal_last_board"`

	TotalExpected   decimal.Decimal `gorm:"type:decimal(20,6)" json:"total_expected"`
	TotalCalculated decimal.Decimal `gorm:"type:decimal(20,6)" json:"total_calculated"`

	Economics JSONData `gorm:"type:json" json:"economics,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Duration   int64      `gorm:"default:0" json:"duration"` // 毫秒
	ErrorMsg   string     `gorm:"type:text" json:"error_msg,omitempty"`

	Scripts []ScriptRecord `gorm:"foreignKey:RunID;references:RunID" json:"scripts,omitempty"`
}

// TableName 指定表名
func (ReplayRun) TableName() string {
	return "replay_runs"
}

// BeforeCreate 创建前的钩子
func (r *ReplayRun) BeforeCreate(tx *gorm.DB) error {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	if r.Status == "" {
		r.Status = ReplayRunRunning
	}
	return nil
}

// Transition 切换任务状态，已结束的任务不能再变更
func (r *ReplayRun) Transition(to ReplayRunStatus) error {
	from := r.Status
	if from == "" {
		from = ReplayRunRunning
	}
	for _, s := range runTransitions[from] {
		if s == to {
			r.Status = to
			return nil
		}
	}
	return fmt.Errorf("invalid run status transition: %s -> %s", from, to)
}

// AllMatched 没有任何不一致
func (r *ReplayRun) AllMatched() bool {
	return r.Failed == 0 && r.PayoutMismatches == 0 && r.StopMismatches == 0 && r.CascadingMismatches == 0
}

// ScriptRecord 单个脚本的回放比对记录
type ScriptRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RunID       string `gorm:"type:varchar(36);index:idx_script_run_type,priority:1;not null" json:"run_id"`
	GameType    string `gorm:"type:varchar(10);index:idx_script_run_type,priority:2;not null" json:"game_type"` // base | free
	ScriptIndex int    `gorm:"index" json:"script_index"`

	ExpectedPayout   float64 `gorm:"type:decimal(20,6)" json:"expected_payout"`
	CalculatedPayout float64 `gorm:"type:decimal(20,6)" json:"calculated_payout"`
	ExpectedStop     int     `json:"expected_stop"`
	ActualStop       int     `json:"actual_stop"`
	Multiplier       int     `gorm:"default:1" json:"multiplier"`

	PayoutMismatch    bool `json:"payout_mismatch"`
	StopMismatch      bool `json:"stop_mismatch"`
	CascadingMismatch bool `json:"cascading_mismatch"`
	Mismatch          bool `gorm:"index" json:"mismatch"` // 任一不一致或出错
	TerminalLastBoard bool `json:"terminal_last_board"`
	Exhausted         bool `json:"exhausted"`

	FirstBoardPatterns string `gorm:"type:text" json:"first_board_patterns"` // JSON数组 [{symbol,count}]
	ErrorMsg           string `gorm:"type:text" json:"error_msg,omitempty"`
}

// TableName 指定表名
func (ScriptRecord) TableName() string {
	return "script_records"
}

// ReplayRunQuery 回放任务查询参数
type ReplayRunQuery struct {
	Variant string          `json:"variant,omitempty"`
	Status  ReplayRunStatus `json:"status,omitempty"`
}

// ScriptRecordQuery 脚本记录查询参数
type ScriptRecordQuery struct {
	RunID        string `json:"run_id"`
	GameType     string `json:"game_type,omitempty"`
	MismatchOnly bool   `json:"mismatch_only,omitempty"`
}
