package slot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMultiplierTable(t *testing.T) {
	tests := []struct {
		volatility Volatility
		weight1    int
		weight2    int
	}{
		{VolatilityLow, 20, 10},
		{VolatilityHigh, 28, 17},
		{"unknown", 28, 17},
	}

	for _, tt := range tests {
		t.Run(string(tt.volatility), func(t *testing.T) {
			table := GetMultiplierTable(tt.volatility)
			require.Len(t, table.Free, 2)
			for _, entry := range table.Free {
				assert.Equal(t, []int{102, 103, 105, 110, 120, 130, 150, 200}, entry.Multiplier)
				assert.Len(t, entry.Weight, len(entry.Multiplier))
			}
			assert.Equal(t, tt.weight1, table.TotalWeight(1))
			assert.Equal(t, tt.weight2, table.TotalWeight(2))
			assert.Equal(t, 0, table.TotalWeight(3))
		})
	}
}

func TestMultiplierTableJSON(t *testing.T) {
	data, err := json.Marshal(GetMultiplierTable(VolatilityLow))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"free":[{"id":1,"multiplier":[102,103,105,110,120,130,150,200],"weight":[10,5,5,0,0,0,0,0]}`)

	// 返回值互不共享底层数组
	a := GetMultiplierTable(VolatilityLow)
	a.Free[0].Weight[0] = 0
	assert.Equal(t, 10, GetMultiplierTable(VolatilityLow).Free[0].Weight[0])
}

func TestParseVolatility(t *testing.T) {
	assert.Equal(t, VolatilityLow, ParseVolatility(""))
	assert.Equal(t, VolatilityLow, ParseVolatility("low"))
	assert.Equal(t, VolatilityHigh, ParseVolatility("high"))
	assert.Equal(t, VolatilityHigh, ParseVolatility("extreme"))
}

func TestSymbolKind(t *testing.T) {
	tests := map[int]string{
		-1:  "empty",
		-2:  "padding",
		0:   "base",
		8:   "base",
		100: "golden",
		199: "golden",
		201: "scatter",
		202: "wild",
		250: "unknown",
	}
	for v, want := range tests {
		assert.Equal(t, want, SymbolKind(v), "value %d", v)
	}
}
