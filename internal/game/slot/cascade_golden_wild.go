package slot

import (
	"github.com/wfunc/slot-replay/internal/errors"
)

// waysRules 不规则盘面ways玩法的消除规则
// 金色符号中奖后转为Wild留在盘面上，普通符号消除为空位；下落只在列的有效高度内进行
type waysRules struct {
	*WaysMatcher
	config *GameConfig
}

func newWaysRules(config *GameConfig) *waysRules {
	return &waysRules{
		WaysMatcher: NewWaysMatcher(config),
		config:      config,
	}
}

// EliminateMatches 金色 -> Wild，其他 -> 空位
func (r *waysRules) EliminateMatches(board Board, patterns MatchPatterns) Board {
	result := board.Clone()
	for _, positions := range patterns {
		for _, pos := range positions {
			if IsGolden(board[pos.Row][pos.Col]) {
				result[pos.Row][pos.Col] = SymbolWild
			} else {
				result[pos.Row][pos.Col] = CellEmpty
			}
		}
	}
	return result
}

// ApplyGravity 在每列有效高度内下落，有效高度之外的格子始终重写为填充位
func (r *waysRules) ApplyGravity(board Board) Board {
	result := board.Clone()

	for col := 0; col < r.config.Width; col++ {
		height := r.config.ColumnHeight(col)

		nonEmpty := make([]int, 0, height)
		for row := 0; row < height && row < len(result); row++ {
			v := result.At(row, col)
			if v != CellEmpty && v != CellPadding {
				nonEmpty = append(nonEmpty, v)
			}
		}

		start := height - len(nonEmpty)
		for row := 0; row < len(result); row++ {
			if col >= len(result[row]) {
				continue
			}
			switch {
			case row >= height:
				result[row][col] = CellPadding
			case row < start:
				result[row][col] = CellEmpty
			default:
				result[row][col] = nonEmpty[row-start]
			}
		}
	}
	return result
}

// Refill 用脚本下一个盘面补空位
func (r *waysRules) Refill(current Board, stop int, script []Board) (Board, error) {
	return refillFromScript(current, stop, script)
}

// Score ways得分
func (r *waysRules) Score(patterns MatchPatterns) float64 {
	return WaysScore(r.config, patterns)
}

// refillFromScript 空位取自 script[stop+1] 同一位置，不推进stop
func refillFromScript(current Board, stop int, script []Board) (Board, error) {
	next := stop + 1
	if next < 0 || next >= len(script) {
		return nil, errors.Newf(errors.ErrScriptExhausted, "脚本没有第 %d 个盘面（共 %d 个）", next, len(script))
	}
	source := script[next]

	result := current.Clone()
	for row := range result {
		for col := range result[row] {
			if result[row][col] != CellEmpty {
				continue
			}
			if row < len(source) && col < len(source[row]) {
				result[row][col] = source[row][col]
			}
		}
	}
	return result, nil
}
