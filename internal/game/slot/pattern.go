package slot

// ClusterMatcher 全盘计数匹配器
// 同一符号在整个盘面上出现次数达到MinMatch即中奖，不要求相邻
type ClusterMatcher struct {
	config *GameConfig
}

// NewClusterMatcher 创建全盘计数匹配器
func NewClusterMatcher(config *GameConfig) *ClusterMatcher {
	return &ClusterMatcher{config: config}
}

// FindMatches 查找所有中奖符号
func (m *ClusterMatcher) FindMatches(board Board) MatchResult {
	patterns := make(MatchPatterns)
	hasMatch := false

	for _, symbol := range m.config.Symbols {
		var positions []Position
		for row := 0; row < m.config.Height && row < len(board); row++ {
			for col := 0; col < m.config.Width && col < len(board[row]); col++ {
				if board[row][col] == symbol {
					positions = append(positions, Position{Row: row, Col: col})
				}
			}
		}

		if len(positions) >= m.config.MinMatch {
			patterns[symbol] = positions
			hasMatch = true
		}
	}

	return MatchResult{Patterns: patterns, HasMatch: hasMatch}
}

// clusterRules cluster玩法的消除规则
type clusterRules struct {
	*ClusterMatcher
	config *GameConfig
}

func newClusterRules(config *GameConfig) *clusterRules {
	return &clusterRules{
		ClusterMatcher: NewClusterMatcher(config),
		config:         config,
	}
}

// EliminateMatches 中奖位置全部置为空位
func (r *clusterRules) EliminateMatches(board Board, patterns MatchPatterns) Board {
	result := board.Clone()
	for _, positions := range patterns {
		for _, pos := range positions {
			result[pos.Row][pos.Col] = CellEmpty
		}
	}
	return result
}

// ApplyGravity 每列非空符号下落到底部，顶部补空位
func (r *clusterRules) ApplyGravity(board Board) Board {
	result := board.Clone()
	height := len(result)

	for col := 0; col < r.config.Width; col++ {
		nonEmpty := make([]int, 0, height)
		for row := 0; row < height; row++ {
			if result[row][col] != CellEmpty {
				nonEmpty = append(nonEmpty, result[row][col])
			}
		}

		start := height - len(nonEmpty)
		for row := 0; row < height; row++ {
			if row < start {
				result[row][col] = CellEmpty
			} else {
				result[row][col] = nonEmpty[row-start]
			}
		}
	}
	return result
}

// Refill 用脚本下一个盘面补空位
func (r *clusterRules) Refill(current Board, stop int, script []Board) (Board, error) {
	return refillFromScript(current, stop, script)
}

// Score 按数量查赔付表，缺失时回退为 symbol * count
func (r *clusterRules) Score(patterns MatchPatterns) float64 {
	total := 0.0
	for symbol, positions := range patterns {
		if len(positions) == 0 {
			continue
		}
		count := len(positions)
		if pay, ok := r.config.PayTable.Lookup(symbol, count); ok {
			total += pay
		} else {
			total += float64(symbol * count)
		}
	}
	return total
}
