package slot

import (
	"github.com/wfunc/slot-replay/internal/errors"
)

// Engine 消除式回放引擎
// 按脚本回放一局：匹配 -> 计分 -> 消除 -> 下落，然后与脚本下一盘面比对并采用脚本盘面
type Engine struct {
	config    *GameConfig
	rules     Rules
	validator *BoardValidator
}

// NewEngine 创建引擎，配置会被深拷贝，之后不再变化
func NewEngine(config *GameConfig) (*Engine, error) {
	if config == nil {
		return nil, errors.New(errors.ErrInvalidGameConfig, "配置为空")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := config.Clone()
	e := &Engine{
		config:    cfg,
		validator: NewBoardValidator(cfg),
	}

	switch cfg.Variant {
	case VariantCluster:
		e.rules = newClusterRules(cfg)
	case VariantWays:
		e.rules = newWaysRules(cfg)
	}
	return e, nil
}

// Config 返回配置副本
func (e *Engine) Config() *GameConfig {
	return e.config.Clone()
}

// Validator 盘面校验器
func (e *Engine) Validator() *BoardValidator {
	return e.validator
}

// FindMatches 查找中奖图案
func (e *Engine) FindMatches(board Board) MatchResult {
	return e.rules.FindMatches(board)
}

// Score 计算图案得分
func (e *Engine) Score(patterns MatchPatterns) float64 {
	return e.rules.Score(patterns)
}

// EliminateMatches 消除中奖位置
func (e *Engine) EliminateMatches(board Board, patterns MatchPatterns) Board {
	return e.rules.EliminateMatches(board, patterns)
}

// ApplyGravity 按列下落
func (e *Engine) ApplyGravity(board Board) Board {
	return e.rules.ApplyGravity(board)
}

// Refill 用 script[stop+1] 填补空位
func (e *Engine) Refill(current Board, stop int, script []Board) (Board, error) {
	return e.rules.Refill(current, stop, script)
}

// IsTerminal 盘面没有任何中奖即为终止状态
func (e *Engine) IsTerminal(board Board) bool {
	return !e.rules.FindMatches(board).HasMatch
}

// Step 单步消除
// 没有中奖时返回盘面副本和0分；关闭连锁时只消除不下落
func (e *Engine) Step(board Board) StepOutcome {
	result := e.rules.FindMatches(board)
	if !result.HasMatch {
		return StepOutcome{Board: board.Clone(), Patterns: MatchPatterns{}}
	}

	score := e.rules.Score(result.Patterns)
	next := e.rules.EliminateMatches(board, result.Patterns)
	if e.config.Cascade {
		next = e.rules.ApplyGravity(next)
	}

	return StepOutcome{
		Board:    next,
		Score:    score,
		Patterns: result.Patterns,
		HasMatch: true,
	}
}

// Steps 回放整段脚本
//
// 当前盘面未终止且脚本还有下一个盘面时循环：计分、消除、下落后，把下落结果中
// 所有非空位与 script[stop+1] 比对，任何不同都记为连锁不一致（不中断）；随后
// 直接采用脚本盘面作为当前盘面并推进stop。返回的Stop为已消耗的盘面数。
// cluster免费游戏结束后，总分乘以 最终盘面倍数符号数量 * specialMultiplier。
// 脚本中任一盘面尺寸与配置不符时返回 ErrInvalidBoard。
func (e *Engine) Steps(script []Board, specialMultiplier int) (ReplayOutcome, error) {
	outcome := ReplayOutcome{
		AllCascadeMatched: true,
		Multiplier:        1,
		Patterns:          []MatchPatterns{},
		Steps:             []StepTrace{},
	}
	if len(script) == 0 {
		return outcome, nil
	}
	for i, board := range script {
		if err := e.checkDimensions(board); err != nil {
			return outcome, errors.Wrapf(err, errors.ErrInvalidBoard, "脚本第 %d 个盘面", i)
		}
	}

	current := script[0].Clone()
	stop := 0
	total := 0.0

	for !e.IsTerminal(current) && stop < len(script)-1 {
		result := e.rules.FindMatches(current)
		score := e.rules.Score(result.Patterns)
		total += score

		gravity := e.rules.ApplyGravity(e.rules.EliminateMatches(current, result.Patterns))

		next := script[stop+1]
		mismatch := compareCascade(gravity, next)
		if len(mismatch) > 0 {
			outcome.AllCascadeMatched = false
		}

		outcome.Patterns = append(outcome.Patterns, result.Patterns)
		outcome.Steps = append(outcome.Steps, StepTrace{
			Stop:          stop,
			Patterns:      result.Patterns,
			Score:         score,
			GravityBoard:  gravity,
			CascadeMatch:  len(mismatch) == 0,
			MismatchCells: mismatch,
		})

		current = next.Clone()
		stop++
	}

	outcome.Terminal = e.IsTerminal(current)
	outcome.Exhausted = !outcome.Terminal

	if e.config.Variant == VariantCluster && e.config.IsFree() {
		if n := current.Count(SymbolMultiplier); n > 0 {
			outcome.Multiplier = n * specialMultiplier
			total *= float64(outcome.Multiplier)
		}
	}

	outcome.FinalBoard = current
	outcome.TotalScore = total
	outcome.Stop = stop + 1
	return outcome, nil
}

func (e *Engine) checkDimensions(board Board) error {
	if len(board) != e.config.Height {
		return errors.Newf(errors.ErrInvalidBoard, "wrong height: got %d, want %d", len(board), e.config.Height)
	}
	for row := range board {
		if len(board[row]) != e.config.Width {
			return errors.Newf(errors.ErrInvalidBoard, "wrong width at row %d: got %d, want %d",
				row, len(board[row]), e.config.Width)
		}
	}
	return nil
}

// compareCascade 下落后盘面中非空位与脚本盘面不一致的位置
func compareCascade(gravity, next Board) []Position {
	var cells []Position
	for row := range gravity {
		for col, v := range gravity[row] {
			if v == CellEmpty {
				continue
			}
			if v != next.At(row, col) {
				cells = append(cells, Position{Row: row, Col: col})
			}
		}
	}
	return cells
}
