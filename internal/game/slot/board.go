package slot

import (
	"fmt"
	"strings"
)

// 格子编码
const (
	CellEmpty   = -1 // 消除后、补充前的空位
	CellPadding = -2 // 不规则盘面中不存在的位置

	GoldenOffset = 100 // 金色符号 = 基础符号 + 100
	GoldenLimit  = 200 // 金色编码上界（不含）

	SymbolScatter    = 201 // 分散符号，永不参与匹配
	SymbolWild       = 202 // 百搭符号，可延续任意符号的连线
	SymbolMultiplier = 202 // 免费游戏倍数符号（cluster玩法，与Wild不会出现在同一盘面）
)

// Board 盘面，board[row][col]
type Board [][]int

// Position 符号位置
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String 返回 "(row,col)"
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// NewBoard 创建指定尺寸、全部为空位的盘面
func NewBoard(height, width int) Board {
	b := make(Board, height)
	for row := range b {
		b[row] = make([]int, width)
		for col := range b[row] {
			b[row][col] = CellEmpty
		}
	}
	return b
}

// Clone 深拷贝盘面
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for i := range b {
		out[i] = make([]int, len(b[i]))
		copy(out[i], b[i])
	}
	return out
}

// Height 行数
func (b Board) Height() int {
	return len(b)
}

// Width 列数（以第一行为准）
func (b Board) Width() int {
	if len(b) == 0 {
		return 0
	}
	return len(b[0])
}

// Equal 判断两个盘面是否完全一致
func (b Board) Equal(other Board) bool {
	if len(b) != len(other) {
		return false
	}
	for row := range b {
		if len(b[row]) != len(other[row]) {
			return false
		}
		for col := range b[row] {
			if b[row][col] != other[row][col] {
				return false
			}
		}
	}
	return true
}

// Key 盘面的紧凑字符串表示，可用作map键
func (b Board) Key() string {
	var sb strings.Builder
	for row := range b {
		if row > 0 {
			sb.WriteByte('|')
		}
		for col, v := range b[row] {
			if col > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", v)
		}
	}
	return sb.String()
}

// At 读取格子，越界时按填充位处理
func (b Board) At(row, col int) int {
	if row < 0 || row >= len(b) || col < 0 || col >= len(b[row]) {
		return CellPadding
	}
	return b[row][col]
}

// Count 统计盘面上等于value的格子数
func (b Board) Count(value int) int {
	n := 0
	for row := range b {
		for _, v := range b[row] {
			if v == value {
				n++
			}
		}
	}
	return n
}

// String 多行文本，用于日志和调试
func (b Board) String() string {
	var sb strings.Builder
	for _, row := range b {
		sb.WriteString("  ")
		for _, v := range row {
			fmt.Fprintf(&sb, "%d ", v)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// IsGolden 是否为金色编码
func IsGolden(v int) bool {
	return v >= GoldenOffset && v < GoldenLimit
}

// BaseSymbol 金色符号还原为基础符号，其他值原样返回
func BaseSymbol(v int) int {
	if IsGolden(v) {
		return v - GoldenOffset
	}
	return v
}

// Golden 基础符号的金色编码
func Golden(symbol int) int {
	return symbol + GoldenOffset
}
