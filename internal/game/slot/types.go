package slot

import (
	"sort"
)

// MatchPatterns 中奖图案: symbol -> 参与中奖的位置
type MatchPatterns map[int][]Position

// Symbols 按升序返回图案中的符号
func (m MatchPatterns) Symbols() []int {
	symbols := make([]int, 0, len(m))
	for s := range m {
		symbols = append(symbols, s)
	}
	sort.Ints(symbols)
	return symbols
}

// TotalPositions 所有图案的位置总数
func (m MatchPatterns) TotalPositions() int {
	n := 0
	for _, positions := range m {
		n += len(positions)
	}
	return n
}

// Clone 深拷贝
func (m MatchPatterns) Clone() MatchPatterns {
	out := make(MatchPatterns, len(m))
	for s, positions := range m {
		out[s] = append([]Position(nil), positions...)
	}
	return out
}

// MatchResult 匹配结果
type MatchResult struct {
	Patterns MatchPatterns `json:"patterns"`
	HasMatch bool          `json:"has_match"`
}

// Matcher 匹配器：盘面 -> 中奖图案
type Matcher interface {
	FindMatches(board Board) MatchResult
}

// Rules 一种玩法的消除规则集合，引擎构造时按变体选定
type Rules interface {
	Matcher

	// EliminateMatches 消除中奖位置，返回新盘面
	EliminateMatches(board Board, patterns MatchPatterns) Board

	// ApplyGravity 按列下落，返回新盘面
	ApplyGravity(board Board) Board

	// Refill 用脚本中下一个盘面 script[stop+1] 填补空位
	Refill(current Board, stop int, script []Board) (Board, error)

	// Score 计算图案得分
	Score(patterns MatchPatterns) float64
}

// StepOutcome 单步结果
type StepOutcome struct {
	Board    Board         `json:"board"`
	Score    float64       `json:"score"`
	Patterns MatchPatterns `json:"patterns"`
	HasMatch bool          `json:"has_match"`
}

// StepTrace 回放过程中每一步的记录
type StepTrace struct {
	Stop          int           `json:"stop"`     // 当前所处的脚本盘面下标
	Patterns      MatchPatterns `json:"patterns"` // 本步中奖图案
	Score         float64       `json:"score"`          // 本步得分
	GravityBoard  Board         `json:"gravity_board"`  // 消除+下落后的盘面（含空位）
	CascadeMatch  bool          `json:"cascade_match"`  // 与脚本下一盘面是否一致
	MismatchCells []Position    `json:"mismatch_cells"` // 不一致的格子
}

// ReplayOutcome 完整脚本回放结果
type ReplayOutcome struct {
	FinalBoard        Board           `json:"final_board"`
	TotalScore        float64         `json:"total_score"`
	Stop              int             `json:"stop"`     // 消耗的盘面数
	Patterns          []MatchPatterns `json:"patterns"` // 每一步的图案
	AllCascadeMatched bool            `json:"all_cascade_matched"`
	Terminal          bool            `json:"terminal"`   // 最终盘面是否为终止状态
	Exhausted         bool            `json:"exhausted"`  // 脚本用尽但盘面仍可消除
	Multiplier        int             `json:"multiplier"` // 免费游戏最终倍数（未生效时为1）
	Steps             []StepTrace     `json:"steps"`
}
