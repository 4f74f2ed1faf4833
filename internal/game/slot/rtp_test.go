package slot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedFGLength(t *testing.T) {
	tests := []struct {
		name      string
		retrigger float64
		expected  float64
	}{
		{"无再触发", 0, 10},
		{"默认再触发", DefaultFGRetriggerProbability, 10 / 0.7},
		{"10%再触发", 0.05, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ExpectedFGLength(tt.retrigger), 1e-9)
		})
	}

	assert.True(t, math.IsInf(ExpectedFGLength(0.1), 1))
}

func TestComputeEconomics(t *testing.T) {
	e := ComputeEconomics(12, 10, 90, 100, DefaultFGTriggerProbability, DefaultFGRetriggerProbability)

	fgLen := 10 / 0.7
	overall := 10 + 100*0.005*fgLen
	antebet := (overall*1.5 - 10) / 30
	feature := 100 * fgLen / 30
	pulls := feature / antebet
	mystery := 1 - (1-1/pulls)/(1-0.005)

	assert.InDelta(t, fgLen, e.ExpectedFGLength, 1e-9)
	assert.InDelta(t, 12+90*0.005*fgLen, e.OverallExpectedAverage, 1e-9)
	assert.InDelta(t, overall, e.OverallCalculatedAverage, 1e-9)
	assert.InDelta(t, antebet, e.AntebetFreeRTP, 1e-9)
	assert.InDelta(t, feature, e.AverageFeatureValue, 1e-9)
	assert.InDelta(t, pulls, e.ExpectedPullsToFG, 1e-9)
	assert.InDelta(t, mystery, e.MysteryTrigger, 1e-9)
	assert.InDelta(t, 0.0060, RoundTo(e.MysteryTrigger, 4), 1e-9)
}

func TestComputeEconomics_ZeroPayout(t *testing.T) {
	e := ComputeEconomics(0, 0, 0, 0, DefaultFGTriggerProbability, DefaultFGRetriggerProbability)
	assert.Equal(t, 0.0, e.AntebetFreeRTP)
	assert.Equal(t, 0.0, e.ExpectedPullsToFG)
	assert.Equal(t, 0.0, e.MysteryTrigger)
}

func TestVariance(t *testing.T) {
	assert.Equal(t, 0.0, Variance(nil))
	assert.Equal(t, 0.0, Variance([]float64{5, 5, 5}))
	assert.InDelta(t, 4.0, Variance([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.1235, RoundTo(0.123456, 4))
	assert.Equal(t, 3.0, RoundTo(2.5, 0))
}
