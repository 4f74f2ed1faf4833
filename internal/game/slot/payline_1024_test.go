package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waysBoard 5x5不规则盘面，三个5分别位于第0/1/2列，没有其他中奖
func waysBoard() Board {
	return Board{
		{5, 0, 1, 2, 3},
		{0, 5, 2, 3, 4},
		{1, 6, 5, 4, 6},
		{2, 7, 7, 8, 7},
		{-2, 8, 3, 1, -2},
	}
}

func TestWaysMatcher_FindMatches(t *testing.T) {
	cfg := DefaultWaysConfig(GameTypeBase)
	matcher := NewWaysMatcher(cfg)

	tests := []struct {
		name  string
		board Board
		want  MatchPatterns
		score float64
	}{
		{
			name:  "三列各一个",
			board: waysBoard(),
			want:  MatchPatterns{5: {{0, 0}, {1, 1}, {2, 2}}},
			score: 3,
		},
		{
			name: "同列多个相乘",
			board: Board{
				{1, 0, 2, 3, 4},
				{1, 1, 1, 4, 6},
				{0, 2, 1, 6, 7},
				{3, 4, 5, 7, 8},
				{-2, 6, 8, 5, -2},
			},
			want:  MatchPatterns{1: {{0, 0}, {1, 0}, {1, 1}, {1, 2}, {2, 2}}},
			score: 40, // ways 2*1*2 * paytable[1][3]
		},
		{
			name: "金色按基础符号起始",
			board: Board{
				{0, 1, 2, 4, 5},
				{103, 3, 6, 7, 8},
				{2, 4, 3, 6, 7},
				{5, 6, 7, 8, 0},
				{-2, 8, 0, 1, -2},
			},
			want:  MatchPatterns{3: {{1, 0}, {1, 1}, {2, 2}}},
			score: 6,
		},
		{
			name: "Wild延续所有连线",
			board: Board{
				{5, 0, 1, 2, 3},
				{0, 105, 2, 3, 4},
				{1, 6, 202, 4, 6},
				{2, 7, 7, 8, 7},
				{-2, 8, 3, 1, -2},
			},
			want: MatchPatterns{
				5: {{0, 0}, {1, 1}, {2, 2}},
				0: {{1, 0}, {0, 1}, {2, 2}},
			},
			score: 3, // 0不在赔付表中
		},
		{
			name: "连线贯通到最后一列",
			board: Board{
				{6, 6, 6, 6, 0},
				{0, 1, 7, 3, 6},
				{1, 2, 3, 4, 2},
				{2, 3, 4, 5, 3},
				{-2, 4, 5, 7, -2},
			},
			want:  MatchPatterns{6: {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {1, 4}}},
			score: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := matcher.FindMatches(tt.board)
			assert.True(t, result.HasMatch)
			require.Len(t, result.Patterns, len(tt.want))
			for symbol, positions := range tt.want {
				assert.ElementsMatch(t, positions, result.Patterns[symbol], "symbol %d", symbol)
			}
			assert.Equal(t, tt.score, WaysScore(cfg, result.Patterns))
		})
	}
}

// 第0~2列没有提前结算：即使已达到MinMatch，在第2列断开也不中奖
func TestWaysMatcher_NoEarlyCommitBeforeColumnThree(t *testing.T) {
	matcher := NewWaysMatcher(DefaultWaysConfig(GameTypeBase))

	board := Board{
		{4, 4, 0, 1, 2},
		{4, 4, 6, 2, 3},
		{0, 1, 2, 3, 5},
		{1, 2, 3, 5, 6},
		{-2, 3, 5, 6, -2},
	}
	result := matcher.FindMatches(board)
	assert.False(t, result.HasMatch)
	assert.Empty(t, result.Patterns)
}

// 第3列起已达MinMatch的连线先结算，之后断开不影响
func TestWaysMatcher_EarlyCommitFromColumnThree(t *testing.T) {
	cfg := DefaultWaysConfig(GameTypeBase)
	matcher := NewWaysMatcher(cfg)

	board := Board{
		{6, 6, 6, 6, 0},
		{0, 1, 7, 3, 1},
		{1, 2, 3, 4, 2},
		{2, 3, 4, 5, 3},
		{-2, 4, 5, 7, -2},
	}
	result := matcher.FindMatches(board)
	require.True(t, result.HasMatch)
	require.Len(t, result.Patterns, 1)
	assert.Equal(t, []Position{{0, 0}, {0, 1}, {0, 2}, {0, 3}}, result.Patterns[6])
	assert.Equal(t, 5.0, WaysScore(cfg, result.Patterns))
}

func TestWaysMatcher_SkipsPaddingAndSpecials(t *testing.T) {
	matcher := NewWaysMatcher(DefaultWaysConfig(GameTypeBase))

	// 第4行是第0列的填充位，即使写入符号也不参与匹配
	board := Board{
		{202, 0, 1, 2, 3},
		{201, 5, 2, 3, 4},
		{-1, 6, 5, 4, 6},
		{2, 7, 7, 8, 7},
		{5, 8, 3, 1, -2},
	}
	result := matcher.FindMatches(board)
	assert.False(t, result.HasMatch)
}

func TestWaysScore_RunShorterThanThree(t *testing.T) {
	cfg := DefaultWaysConfig(GameTypeBase)

	tests := []struct {
		name     string
		patterns MatchPatterns
	}{
		{
			name:     "只有第0/1列",
			patterns: MatchPatterns{4: {{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}, {2, 1}}},
		},
		{
			name:     "第2列缺失",
			patterns: MatchPatterns{5: {{0, 0}, {0, 1}, {0, 3}, {0, 4}}},
		},
		{
			name:     "不从第0列开始",
			patterns: MatchPatterns{1: {{0, 1}, {0, 2}, {0, 3}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0.0, WaysScore(cfg, tt.patterns))
		})
	}
}

func TestWaysRules_Eliminate(t *testing.T) {
	rules := newWaysRules(DefaultWaysConfig(GameTypeBase))
	board := Board{
		{5, 0, 1, 2, 3},
		{0, 105, 2, 3, 4},
		{1, 6, 202, 4, 6},
		{2, 7, 7, 8, 7},
		{-2, 8, 3, 1, -2},
	}

	patterns := rules.FindMatches(board).Patterns
	eliminated := rules.EliminateMatches(board, patterns)

	assert.Equal(t, SymbolWild, eliminated[1][1], "金色转为Wild")
	assert.Equal(t, CellEmpty, eliminated[2][2], "Wild被消除")
	assert.Equal(t, CellEmpty, eliminated[0][0])
	assert.Equal(t, CellEmpty, eliminated[1][0])
	assert.Equal(t, CellEmpty, eliminated[0][1])
	assert.Equal(t, 105, board[1][1])
}

func TestWaysRules_Gravity(t *testing.T) {
	rules := newWaysRules(DefaultWaysConfig(GameTypeBase))

	board := Board{
		{-1, 0, 1, 2, 3},
		{0, -1, 2, -1, 4},
		{-1, 6, -1, 4, -1},
		{2, 7, 7, -1, 7},
		{-2, -1, 3, 1, -2},
	}
	expected := Board{
		{-1, -1, -1, -1, -1},
		{-1, -1, 1, -1, 3},
		{0, 0, 2, 2, 4},
		{2, 6, 7, 4, 7},
		{-2, 7, 3, 1, -2},
	}

	once := rules.ApplyGravity(board)
	assert.Equal(t, expected, once)
	assert.Equal(t, once, rules.ApplyGravity(once), "下落应幂等")

	for row := range once {
		for col := range once[row] {
			cfg := rules.config
			assert.Equal(t, cfg.IsPaddingCell(row, col), once[row][col] == CellPadding,
				"padding at (%d,%d)", row, col)
		}
	}
}

func TestWaysRules_GravityRestoresPadding(t *testing.T) {
	rules := newWaysRules(DefaultWaysConfig(GameTypeBase))

	board := waysBoard()
	board[4][0] = 3
	board[4][4] = CellEmpty

	result := rules.ApplyGravity(board)
	assert.Equal(t, CellPadding, result[4][0])
	assert.Equal(t, CellPadding, result[4][4])
	assert.Equal(t, waysBoard(), result)
}
