package slot

// Volatility 倍数表波动类型
type Volatility string

const (
	VolatilityHigh Volatility = "high"
	VolatilityLow  Volatility = "low"
)

// multiplierValues 免费游戏倍数符号可取的倍数（百分比编码，102 = x1.02）
var multiplierValues = []int{102, 103, 105, 110, 120, 130, 150, 200}

// MultiplierEntry 一组倍数权重
type MultiplierEntry struct {
	ID         int   `json:"id"`
	Multiplier []int `json:"multiplier"`
	Weight     []int `json:"weight"`
}

// MultiplierTable 免费游戏倍数表
type MultiplierTable struct {
	Free []MultiplierEntry `json:"free"`
}

// TotalWeight 指定id的权重总和，id不存在时返回0
func (t MultiplierTable) TotalWeight(id int) int {
	for _, e := range t.Free {
		if e.ID != id {
			continue
		}
		total := 0
		for _, w := range e.Weight {
			total += w
		}
		return total
	}
	return 0
}

// GetMultiplierTable 按波动类型获取倍数表，未知类型按高波动处理
func GetMultiplierTable(volatility Volatility) MultiplierTable {
	if volatility == VolatilityLow {
		return newMultiplierTable(
			[]int{10, 5, 5, 0, 0, 0, 0, 0},
			[]int{1, 1, 1, 0, 2, 2, 2, 1},
		)
	}
	return newMultiplierTable(
		[]int{10, 5, 5, 8, 0, 0, 0, 0},
		[]int{0, 0, 2, 0, 3, 2, 9, 1},
	)
}

func newMultiplierTable(weights ...[]int) MultiplierTable {
	table := MultiplierTable{Free: make([]MultiplierEntry, 0, len(weights))}
	for i, w := range weights {
		table.Free = append(table.Free, MultiplierEntry{
			ID:         i + 1,
			Multiplier: append([]int(nil), multiplierValues...),
			Weight:     append([]int(nil), w...),
		})
	}
	return table
}

// ParseVolatility 解析波动类型，空串为低波动，其他未知值为高波动
func ParseVolatility(s string) Volatility {
	switch Volatility(s) {
	case VolatilityLow, "":
		return VolatilityLow
	default:
		return VolatilityHigh
	}
}

// SymbolKind 格子编码的类别
func SymbolKind(v int) string {
	switch {
	case v == CellEmpty:
		return "empty"
	case v == CellPadding:
		return "padding"
	case v == SymbolScatter:
		return "scatter"
	case v == SymbolWild:
		return "wild"
	case IsGolden(v):
		return "golden"
	case v >= 0 && v < GoldenOffset:
		return "base"
	default:
		return "unknown"
	}
}
