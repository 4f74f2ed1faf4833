package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/slot-replay/internal/errors"
)

// clusterNext clusterBoard消除下落后由脚本补齐的终止盘面
func clusterNext() Board {
	return Board{
		{4, 5, 7, 8, 0, 1},
		{7, 8, 0, 1, 2, 4},
		{5, 6, 7, 8, 0, 1},
		{2, 4, 5, 6, 7, 8},
		{0, 1, 2, 4, 5, 6},
	}
}

// waysNext waysBoard消除下落后由脚本补齐的终止盘面
func waysNext() Board {
	return Board{
		{6, 8, 5, 2, 3},
		{0, 0, 1, 3, 4},
		{1, 6, 2, 4, 6},
		{2, 7, 7, 8, 7},
		{-2, 8, 3, 1, -2},
	}
}

func mustEngine(t *testing.T, cfg *GameConfig) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg)
	require.NoError(t, err)
	return engine
}

func TestNewEngine(t *testing.T) {
	_, err := NewEngine(nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidGameConfig))

	cfg := DefaultWaysConfig(GameTypeBase)
	cfg.Variant = "megaways"
	_, err = NewEngine(cfg)
	assert.True(t, errors.Is(err, errors.ErrInvalidGameConfig))

	// 构造后修改原配置不影响引擎
	cfg = DefaultWaysConfig(GameTypeBase)
	engine := mustEngine(t, cfg)
	cfg.MinMatch = 99
	cfg.ColumnHeights[0] = 1
	cfg.PayTable[5][3] = 1000
	assert.Equal(t, 3, engine.Config().MinMatch)
	assert.Equal(t, 4, engine.Config().ColumnHeight(0))
	assert.Equal(t, 3.0, engine.Step(waysBoard()).Score)
}

// 5x5盘面三个5：得分 paytable[5][3]*1，消除后下落，结果为终止状态
func TestEngine_StepWaysScenario(t *testing.T) {
	engine := mustEngine(t, DefaultWaysConfig(GameTypeBase))
	board := waysBoard()

	result := engine.FindMatches(board)
	require.True(t, result.HasMatch)
	assert.Equal(t, MatchPatterns{5: {{0, 0}, {1, 1}, {2, 2}}}, result.Patterns)
	assert.Equal(t, 3.0, engine.Score(result.Patterns))

	eliminated := engine.EliminateMatches(board, result.Patterns)
	assert.Equal(t, CellEmpty, eliminated[0][0])
	assert.Equal(t, CellEmpty, eliminated[1][1])
	assert.Equal(t, CellEmpty, eliminated[2][2])

	outcome := engine.Step(board)
	expected := Board{
		{-1, -1, -1, 2, 3},
		{0, 0, 1, 3, 4},
		{1, 6, 2, 4, 6},
		{2, 7, 7, 8, 7},
		{-2, 8, 3, 1, -2},
	}
	assert.Equal(t, expected, outcome.Board)
	assert.Equal(t, 3.0, outcome.Score)
	assert.True(t, outcome.HasMatch)
	assert.True(t, engine.IsTerminal(outcome.Board))
	assert.Equal(t, waysBoard(), board, "输入盘面不应被修改")
}

func TestEngine_TerminalIdempotence(t *testing.T) {
	for _, tc := range []struct {
		name  string
		cfg   *GameConfig
		board Board
	}{
		{"cluster", DefaultClusterConfig(GameTypeBase), clusterNext()},
		{"ways", DefaultWaysConfig(GameTypeBase), waysNext()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			engine := mustEngine(t, tc.cfg)
			require.True(t, engine.IsTerminal(tc.board))
			assert.False(t, engine.FindMatches(tc.board).HasMatch)

			outcome := engine.Step(tc.board)
			assert.Equal(t, tc.board, outcome.Board)
			assert.Equal(t, 0.0, outcome.Score)
			assert.False(t, outcome.HasMatch)
		})
	}
}

func TestEngine_StepWithoutCascade(t *testing.T) {
	cfg := DefaultClusterConfig(GameTypeBase)
	cfg.Cascade = false
	engine := mustEngine(t, cfg)

	board := clusterBoard()
	outcome := engine.Step(board)
	assert.Equal(t, 30.0, outcome.Score)
	require.True(t, outcome.HasMatch)

	// 中奖位置被消除且不下落，其余位置不变
	matched := make(map[Position]bool)
	for _, positions := range outcome.Patterns {
		for _, p := range positions {
			matched[p] = true
			assert.Equal(t, CellEmpty, outcome.Board[p.Row][p.Col], "%s", p)
		}
	}
	for row := range board {
		for col := range board[row] {
			if !matched[Position{Row: row, Col: col}] {
				assert.Equal(t, board[row][col], outcome.Board[row][col])
			}
		}
	}
	assert.Equal(t, clusterBoard(), board, "输入盘面不被修改")
}

func TestEngine_StepWithoutCascadeWays(t *testing.T) {
	cfg := DefaultWaysConfig(GameTypeBase)
	cfg.Cascade = false
	engine := mustEngine(t, cfg)

	board := waysBoard()

	outcome := engine.Step(board)
	require.True(t, outcome.HasMatch)
	require.Contains(t, outcome.Patterns, 5)
	assert.Equal(t, []Position{{0, 0}, {1, 1}, {2, 2}}, outcome.Patterns[5])
	assert.Equal(t, Board{
		{-1, 0, 1, 2, 3},
		{0, -1, 2, 3, 4},
		{1, 6, -1, 4, 6},
		{2, 7, 7, 8, 7},
		{-2, 8, 3, 1, -2},
	}, outcome.Board)
}

func TestEngine_Refill(t *testing.T) {
	engine := mustEngine(t, DefaultWaysConfig(GameTypeBase))
	script := []Board{waysBoard(), waysNext()}

	gravity := engine.Step(waysBoard()).Board
	refilled, err := engine.Refill(gravity, 0, script)
	require.NoError(t, err)
	assert.Equal(t, waysNext(), refilled)

	_, err = engine.Refill(gravity, 1, script)
	assert.True(t, errors.Is(err, errors.ErrScriptExhausted))
}

func TestEngine_Steps(t *testing.T) {
	tests := []struct {
		name       string
		cfg        *GameConfig
		script     []Board
		special    int
		score      float64
		stop       int
		matched    bool
		terminal   bool
		multiplier int
	}{
		{
			name:     "cluster完整脚本",
			cfg:      DefaultClusterConfig(GameTypeBase),
			script:   []Board{clusterBoard(), clusterNext()},
			special:  1,
			score:    30,
			stop:     2,
			matched:  true,
			terminal: true,
		},
		{
			name:     "ways完整脚本",
			cfg:      DefaultWaysConfig(GameTypeBase),
			script:   []Board{waysBoard(), waysNext()},
			special:  1,
			score:    3,
			stop:     2,
			matched:  true,
			terminal: true,
		},
		{
			name:     "首盘面即终止",
			cfg:      DefaultWaysConfig(GameTypeBase),
			script:   []Board{waysNext(), waysBoard()},
			special:  1,
			score:    0,
			stop:     1,
			matched:  true,
			terminal: true,
		},
		{
			name:     "脚本用尽",
			cfg:      DefaultClusterConfig(GameTypeBase),
			script:   []Board{clusterBoard()},
			special:  1,
			score:    0,
			stop:     1,
			matched:  true,
			terminal: false,
		},
		{
			name: "免费游戏倍数",
			cfg:  DefaultClusterConfig(GameTypeFree),
			script: func() []Board {
				next := clusterNext()
				next[0][0] = SymbolMultiplier
				next[0][1] = SymbolMultiplier
				return []Board{clusterBoard(), next}
			}(),
			special:    2,
			score:      120,
			stop:       2,
			matched:    true,
			terminal:   true,
			multiplier: 4,
		},
		{
			name: "基础游戏不计倍数",
			cfg:  DefaultClusterConfig(GameTypeBase),
			script: func() []Board {
				next := clusterNext()
				next[0][0] = SymbolMultiplier
				return []Board{clusterBoard(), next}
			}(),
			special:  2,
			score:    30,
			stop:     2,
			matched:  true,
			terminal: true,
		},
		{
			name:     "免费游戏无倍数符号",
			cfg:      DefaultClusterConfig(GameTypeFree),
			script:   []Board{clusterBoard(), clusterNext()},
			special:  20,
			score:    30,
			stop:     2,
			matched:  true,
			terminal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := mustEngine(t, tt.cfg)
			outcome, err := engine.Steps(tt.script, tt.special)
			require.NoError(t, err)

			assert.Equal(t, tt.score, outcome.TotalScore)
			assert.Equal(t, tt.stop, outcome.Stop)
			assert.Equal(t, tt.matched, outcome.AllCascadeMatched)
			assert.Equal(t, tt.terminal, outcome.Terminal)
			assert.Equal(t, !tt.terminal, outcome.Exhausted)
			assert.Len(t, outcome.Patterns, tt.stop-1)
			assert.Len(t, outcome.Steps, tt.stop-1)
			assert.Equal(t, tt.script[tt.stop-1], outcome.FinalBoard)

			multiplier := tt.multiplier
			if multiplier == 0 {
				multiplier = 1
			}
			assert.Equal(t, multiplier, outcome.Multiplier)
		})
	}
}

func TestEngine_StepsCascadeMismatch(t *testing.T) {
	engine := mustEngine(t, DefaultClusterConfig(GameTypeBase))

	next := clusterNext()
	next[3][0] = 7
	script := []Board{clusterBoard(), next}

	outcome, err := engine.Steps(script, 1)
	require.NoError(t, err)
	assert.False(t, outcome.AllCascadeMatched)
	assert.Equal(t, 30.0, outcome.TotalScore)
	assert.Equal(t, 2, outcome.Stop)

	require.Len(t, outcome.Steps, 1)
	assert.False(t, outcome.Steps[0].CascadeMatch)
	assert.Equal(t, []Position{{3, 0}}, outcome.Steps[0].MismatchCells)

	// 采用脚本盘面而不是计算出的下落盘面
	assert.Equal(t, next, outcome.FinalBoard)
	assert.Equal(t, 7, script[1][3][0], "脚本不应被修改")
}

func TestEngine_StepsEmptyAndInvalid(t *testing.T) {
	engine := mustEngine(t, DefaultWaysConfig(GameTypeBase))

	outcome, err := engine.Steps(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Stop)
	assert.Equal(t, 0.0, outcome.TotalScore)
	assert.True(t, outcome.AllCascadeMatched)
	assert.Empty(t, outcome.Patterns)

	bad := waysNext()[:4]
	_, err = engine.Steps([]Board{waysBoard(), bad}, 1)
	assert.True(t, errors.Is(err, errors.ErrInvalidBoard))
}

// 所有步骤消除的格子数等于下落后留给脚本补齐的空位数
func TestEngine_EliminationConservation(t *testing.T) {
	for _, tc := range []struct {
		name   string
		cfg    *GameConfig
		script []Board
	}{
		{"cluster", DefaultClusterConfig(GameTypeBase), []Board{clusterBoard(), clusterNext()}},
		{"ways", DefaultWaysConfig(GameTypeBase), []Board{waysBoard(), waysNext()}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			engine := mustEngine(t, tc.cfg)
			outcome, err := engine.Steps(tc.script, 1)
			require.NoError(t, err)

			eliminated, refilled := 0, 0
			for _, step := range outcome.Steps {
				eliminated += step.Patterns.TotalPositions()
				refilled += step.GravityBoard.Count(CellEmpty)
			}
			assert.Greater(t, eliminated, 0)
			assert.Equal(t, eliminated, refilled)
		})
	}
}
