package slot

import (
	"fmt"

	"github.com/wfunc/slot-replay/internal/errors"
)

// Variant 规则变体
type Variant string

const (
	VariantCluster Variant = "cluster" // 全盘计数消除（8个以上任意位置）
	VariantWays    Variant = "ways"    // 从左至右ways连线，支持金色/Wild
)

// GameType 游戏类型
type GameType string

const (
	GameTypeBase GameType = "base"
	GameTypeFree GameType = "free"
)

// PayTable 赔付表: symbol -> (数量或列数 -> 赔付)
type PayTable map[int]map[int]float64

// Lookup 查询赔付，不存在时ok=false
func (p PayTable) Lookup(symbol, kind int) (float64, bool) {
	row, ok := p[symbol]
	if !ok {
		return 0, false
	}
	v, ok := row[kind]
	return v, ok
}

// Clone 深拷贝
func (p PayTable) Clone() PayTable {
	if p == nil {
		return nil
	}
	out := make(PayTable, len(p))
	for symbol, row := range p {
		r := make(map[int]float64, len(row))
		for k, v := range row {
			r[k] = v
		}
		out[symbol] = r
	}
	return out
}

// GameConfig 游戏规则配置，引擎构造后不再变化
type GameConfig struct {
	Variant  Variant  `json:"variant" mapstructure:"variant"`
	Height   int      `json:"height" mapstructure:"height"`
	Width    int      `json:"width" mapstructure:"width"`
	Symbols  []int    `json:"symbols" mapstructure:"symbols"`
	MinMatch int      `json:"min_match" mapstructure:"min_match"`
	Cascade  bool     `json:"cascade" mapstructure:"cascade"`
	Cost     float64  `json:"cost" mapstructure:"cost"`
	GameType GameType `json:"game_type" mapstructure:"game_type"`
	PayTable PayTable `json:"pay_table" mapstructure:"-"`

	// 不规则盘面每列的有效高度，nil表示矩形盘面
	ColumnHeights []int `json:"column_heights,omitempty" mapstructure:"column_heights"`
	// 免费游戏中必须全部为金色的列
	SpecialColumn int `json:"special_column" mapstructure:"special_column"`
	// 每列金色符号上限（免费游戏特殊列除外）
	MaxGoldenPerColumn int `json:"max_golden_per_column" mapstructure:"max_golden_per_column"`
}

// Clone 深拷贝配置
func (c *GameConfig) Clone() *GameConfig {
	out := *c
	out.Symbols = append([]int(nil), c.Symbols...)
	out.ColumnHeights = append([]int(nil), c.ColumnHeights...)
	out.PayTable = c.PayTable.Clone()
	return &out
}

// IsFree 是否为免费游戏
func (c *GameConfig) IsFree() bool {
	return c.GameType == GameTypeFree
}

// ColumnHeight 第col列的有效高度
func (c *GameConfig) ColumnHeight(col int) int {
	if col < 0 || col >= c.Width {
		return 0
	}
	if len(c.ColumnHeights) == 0 {
		return c.Height
	}
	return c.ColumnHeights[col]
}

// IsPaddingCell 该位置是否为填充位
func (c *GameConfig) IsPaddingCell(row, col int) bool {
	if col < 0 || col >= c.Width {
		return true
	}
	return row >= c.ColumnHeight(col)
}

// HasSymbol 符号是否在字母表中
func (c *GameConfig) HasSymbol(symbol int) bool {
	for _, s := range c.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// Validate 校验配置
func (c *GameConfig) Validate() error {
	if c.Variant != VariantCluster && c.Variant != VariantWays {
		return errors.Newf(errors.ErrInvalidGameConfig, "未知的规则变体: %q", c.Variant)
	}
	if c.Height <= 0 || c.Width <= 0 {
		return errors.Newf(errors.ErrInvalidGameConfig, "盘面尺寸无效: %dx%d", c.Height, c.Width)
	}
	if len(c.Symbols) == 0 {
		return errors.New(errors.ErrInvalidGameConfig, "符号表为空")
	}
	for _, s := range c.Symbols {
		if s < 0 || s >= GoldenOffset {
			return errors.Newf(errors.ErrInvalidGameConfig, "符号 %d 超出基础符号范围", s)
		}
	}
	if c.MinMatch <= 0 {
		return errors.Newf(errors.ErrInvalidGameConfig, "最少匹配数无效: %d", c.MinMatch)
	}
	if c.GameType != GameTypeBase && c.GameType != GameTypeFree {
		return errors.Newf(errors.ErrInvalidGameConfig, "未知的游戏类型: %q", c.GameType)
	}
	if len(c.ColumnHeights) > 0 {
		if len(c.ColumnHeights) != c.Width {
			return errors.Newf(errors.ErrInvalidGameConfig,
				"列高度数量 %d 与盘面宽度 %d 不一致", len(c.ColumnHeights), c.Width)
		}
		for col, h := range c.ColumnHeights {
			if h <= 0 || h > c.Height {
				return errors.Newf(errors.ErrInvalidGameConfig, "第 %d 列高度 %d 无效", col, h)
			}
		}
	}
	if c.Variant == VariantWays {
		if c.SpecialColumn < 0 || c.SpecialColumn >= c.Width {
			return errors.Newf(errors.ErrInvalidGameConfig, "特殊列 %d 超出范围", c.SpecialColumn)
		}
		if c.MaxGoldenPerColumn < 0 {
			return errors.Newf(errors.ErrInvalidGameConfig, "金色上限无效: %d", c.MaxGoldenPerColumn)
		}
	}
	return nil
}

// String 简要描述
func (c *GameConfig) String() string {
	return fmt.Sprintf("%s/%s %dx%d min=%d", c.Variant, c.GameType, c.Height, c.Width, c.MinMatch)
}

// DefaultClusterConfig 6x5全盘计数玩法（8个以上即中奖）
func DefaultClusterConfig(gameType GameType) *GameConfig {
	return &GameConfig{
		Variant:  VariantCluster,
		Height:   5,
		Width:    6,
		Symbols:  []int{0, 1, 2, 3, 4, 5, 6, 7, 8},
		MinMatch: 8,
		Cascade:  true,
		Cost:     20,
		GameType: gameType,
		PayTable: clusterPayTable(),
	}
}

// DefaultWaysConfig 5x5不规则盘面ways玩法，列高 {4,5,5,5,4}
func DefaultWaysConfig(gameType GameType) *GameConfig {
	return &GameConfig{
		Variant:            VariantWays,
		Height:             5,
		Width:              5,
		Symbols:            []int{0, 1, 2, 3, 4, 5, 6, 7, 8},
		MinMatch:           3,
		Cascade:            true,
		Cost:               20,
		GameType:           gameType,
		PayTable:           waysPayTable(),
		ColumnHeights:      []int{4, 5, 5, 5, 4},
		SpecialColumn:      2,
		MaxGoldenPerColumn: 2,
	}
}

// DefaultConfig 按变体获取默认配置
func DefaultConfig(variant Variant, gameType GameType) (*GameConfig, error) {
	switch variant {
	case VariantCluster:
		return DefaultClusterConfig(gameType), nil
	case VariantWays:
		return DefaultWaysConfig(gameType), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidGameConfig, "未知的规则变体: %q", variant)
	}
}

// clusterPayTable 数量8~30的分段赔付
func clusterPayTable() PayTable {
	// 每个符号: 8-9个, 10-11个, 12个及以上
	tiers := map[int][3]float64{
		0: {200, 500, 1000},
		1: {50, 200, 500},
		2: {40, 100, 300},
		3: {30, 40, 240},
		4: {20, 30, 200},
		5: {16, 24, 160},
		6: {10, 20, 100},
		7: {8, 18, 80},
		8: {5, 15, 40},
	}
	table := make(PayTable, len(tiers))
	for symbol, t := range tiers {
		row := make(map[int]float64, 23)
		for count := 8; count <= 30; count++ {
			switch {
			case count <= 9:
				row[count] = t[0]
			case count <= 11:
				row[count] = t[1]
			default:
				row[count] = t[2]
			}
		}
		table[symbol] = row
	}
	return table
}

// waysPayTable 按连续列数(3/4/5)赔付
func waysPayTable() PayTable {
	return PayTable{
		1: {3: 10, 4: 25, 5: 50},
		2: {3: 8, 4: 20, 5: 40},
		3: {3: 6, 4: 15, 5: 30},
		4: {3: 5, 4: 10, 5: 15},
		5: {3: 3, 4: 5, 5: 12},
		6: {3: 3, 4: 5, 5: 12},
		7: {3: 2, 4: 4, 5: 10},
		8: {3: 1, 4: 3, 5: 6},
		9: {3: 1, 4: 3, 5: 6},
	}
}
