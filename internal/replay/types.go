package replay

import (
	"github.com/wfunc/slot-replay/internal/game/slot"
)

// 免费游戏中这些特殊倍数使用倍数表1
var multipleTableOneValues = map[int]bool{1: true, 20: true, 40: true}

// Script 一局的脚本：按顺序记录的盘面以及脚本声明的结果，回放时只读
type Script struct {
	Index              int          `json:"index"`
	Boards             []slot.Board `json:"script"`
	Stop               int          `json:"stop"`
	Payout             float64      `json:"payout"`
	PayoutID           int          `json:"payout_id"`
	SpecialMultipliers int          `json:"special_multipliers"`
	MultipleTable      int          `json:"multiple_table"`
	IsFree             bool         `json:"is_free"`
}

// GameType 脚本所属的游戏类型
func (s *Script) GameType() slot.GameType {
	if s.IsFree {
		return slot.GameTypeFree
	}
	return slot.GameTypeBase
}

// Multiplier 回放使用的特殊倍数，未设置时为1
func (s *Script) Multiplier() int {
	if s.SpecialMultipliers == 0 {
		return 1
	}
	return s.SpecialMultipliers
}

// Normalize 补齐默认值：特殊倍数默认为1，免费脚本按特殊倍数选择倍数表
func (s *Script) Normalize() {
	s.SpecialMultipliers = s.Multiplier()
	if s.IsFree && multipleTableOneValues[s.SpecialMultipliers] {
		s.MultipleTable = 1
	}
}

// ScriptSet 基础/免费两组脚本，按index索引，两组之间互不引用
type ScriptSet struct {
	Base map[int]*Script `json:"base"`
	Free map[int]*Script `json:"free"`
}

// NewScriptSet 创建空脚本集
func NewScriptSet() *ScriptSet {
	return &ScriptSet{
		Base: make(map[int]*Script),
		Free: make(map[int]*Script),
	}
}

// Partition 按游戏类型取脚本
func (s *ScriptSet) Partition(gameType slot.GameType) map[int]*Script {
	if gameType == slot.GameTypeFree {
		return s.Free
	}
	return s.Base
}

// Total 脚本总数
func (s *ScriptSet) Total() int {
	return len(s.Base) + len(s.Free)
}

// PatternInfo 首盘面中奖图案摘要
type PatternInfo struct {
	Symbol int `json:"symbol"`
	Count  int `json:"count"`
}

// ScriptResult 单个脚本的回放比对结果
type ScriptResult struct {
	Index              int           `json:"index"`
	ExpectedPayout     float64       `json:"expectedPayout"`
	CalculatedPayout   float64       `json:"calculatedPayout"`
	ExpectedStop       int           `json:"expectedStop"`
	ActualStop         int           `json:"actualStop"`
	PayoutMismatch     bool          `json:"payoutMismatch"`
	StopMismatch       bool          `json:"stopMismatch"`
	CascadingMismatch  bool          `json:"cascadingMismatch"`
	TerminalLastBoard  bool          `json:"terminalLastBoard"`
	Exhausted          bool          `json:"exhausted"`
	Multiplier         int           `json:"multiplier"`
	FirstBoardPatterns []PatternInfo `json:"firstBoardPatterns"`
	Error              string        `json:"error,omitempty"`
}

// Failed 回放过程中出错
func (r ScriptResult) Failed() bool {
	return r.Error != ""
}

// Mismatched 三类不一致中任意一项成立
func (r ScriptResult) Mismatched() bool {
	return r.PayoutMismatch || r.StopMismatch || r.CascadingMismatch
}
