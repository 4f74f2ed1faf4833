package slot

// earlyCommitColumn 从该列开始，已达到最少匹配数的连线在尝试延伸前先行结算
const earlyCommitColumn = 3

// WaysMatcher ways连线匹配器（从第0列开始逐列延伸，每列收集全部同符号/Wild）
type WaysMatcher struct {
	config *GameConfig
}

// NewWaysMatcher 创建ways匹配器
func NewWaysMatcher(config *GameConfig) *WaysMatcher {
	return &WaysMatcher{config: config}
}

// FindMatches 动态规划查找所有ways连线
//
// dp[symbol] 保存该符号连线依次经过的位置。第0列的每个有效符号（金色按基础符号计）
// 开启一条连线；之后每列只要出现该符号、其金色形式或Wild，连线就把这些位置全部
// 收入。从第3列起，已达到MinMatch的连线先结算，之后即使断开也不影响中奖。
func (m *WaysMatcher) FindMatches(board Board) MatchResult {
	patterns := make(MatchPatterns)
	hasMatch := false

	dp := make(map[int][]Position)
	for row := 0; row < m.config.ColumnHeight(0); row++ {
		cell := board.At(row, 0)
		if cell == CellEmpty || cell == CellPadding || cell == SymbolWild || cell == SymbolScatter {
			continue
		}
		symbol := BaseSymbol(cell)
		if !m.config.HasSymbol(symbol) {
			continue
		}
		dp[symbol] = append(dp[symbol], Position{Row: row, Col: 0})
	}

	for col := 1; col < m.config.Width; col++ {
		next := make(map[int][]Position, len(dp))

		for symbol, chain := range dp {
			if col >= earlyCommitColumn && len(chain) >= m.config.MinMatch {
				patterns[symbol] = chain
				hasMatch = true
			}

			hits := m.columnHits(board, col, symbol)
			if len(hits) == 0 {
				continue
			}
			extended := make([]Position, 0, len(chain)+len(hits))
			extended = append(extended, chain...)
			extended = append(extended, hits...)
			next[symbol] = extended
		}

		dp = next
	}

	for symbol, chain := range dp {
		if len(chain) >= m.config.MinMatch {
			patterns[symbol] = chain
			hasMatch = true
		}
	}

	return MatchResult{Patterns: patterns, HasMatch: hasMatch}
}

// columnHits 第col列中可延续symbol连线的所有位置
func (m *WaysMatcher) columnHits(board Board, col, symbol int) []Position {
	var hits []Position
	for row := 0; row < m.config.ColumnHeight(col); row++ {
		cell := board.At(row, col)
		if cell == symbol || cell == Golden(symbol) || cell == SymbolWild {
			hits = append(hits, Position{Row: row, Col: col})
		}
	}
	return hits
}

// WaysScore 计算ways得分
//
// 按列统计图案位置数，从第0列起取连续非零列数作为连线长度（至少3列），
// ways = 各列数量之积，得分 = ways * paytable[symbol][长度]。
func WaysScore(config *GameConfig, patterns MatchPatterns) float64 {
	total := 0.0
	for symbol, positions := range patterns {
		if len(positions) == 0 {
			continue
		}

		counts := make([]int, config.Width)
		for _, pos := range positions {
			if pos.Col >= 0 && pos.Col < len(counts) {
				counts[pos.Col]++
			}
		}

		run := 0
		for _, c := range counts {
			if c == 0 {
				break
			}
			run++
		}
		if run < 3 {
			continue
		}

		ways := 1
		for col := 0; col < run; col++ {
			ways *= counts[col]
		}

		pay, _ := config.PayTable.Lookup(symbol, run)
		total += pay * float64(ways)
	}
	return total
}
