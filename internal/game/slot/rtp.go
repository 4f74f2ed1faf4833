package slot

import (
	"math"
)

// 免费游戏概率默认值
const (
	DefaultFGTriggerProbability   = 0.005
	DefaultFGRetriggerProbability = 0.03

	// 每次触发的基础免费局数
	baseFreeSpins = 10.0
	// 加注（antebet）倍率与基础投注额
	antebetFactor = 1.5
	antebetCost   = 30.0
)

// FreeGameEconomics 基础游戏与免费游戏平均赔付推导出的RTP指标
type FreeGameEconomics struct {
	FGTriggerProbability   float64 `json:"fg_trigger_probability"`
	FGRetriggerProbability float64 `json:"fg_retrigger_probability"`
	ExpectedFGLength       float64 `json:"expected_fg_length"`

	// 每次基础旋转的综合平均赔付 = base + free * 触发概率 * 免费局长度
	OverallExpectedAverage   float64 `json:"overall_expected_average"`
	OverallCalculatedAverage float64 `json:"overall_calculated_average"`

	AntebetFreeRTP      float64 `json:"antebet_free_rtp"`
	AverageFeatureValue float64 `json:"average_feature_value"`
	ExpectedPullsToFG   float64 `json:"expected_pulls_to_fg"`
	MysteryTrigger      float64 `json:"mystery_trigger"`
}

// ExpectedFGLength 含再触发的免费游戏期望局数: 10 / (1 - 10*p)
func ExpectedFGLength(retriggerProb float64) float64 {
	denom := 1.0 - baseFreeSpins*retriggerProb
	if denom <= 0 {
		return math.Inf(1)
	}
	return baseFreeSpins / denom
}

// OverallAverage 每次基础旋转的综合平均赔付
func OverallAverage(baseAvg, freeAvg, triggerProb, fgLength float64) float64 {
	return baseAvg + freeAvg*triggerProb*fgLength
}

// ComputeEconomics 由基础/免费游戏的期望与计算平均赔付推导RTP指标
//
// antebetFreeRTP = (overall*1.5 - base) / 30
// averageFeatureValue = free * fgLength / 30
// expectedPullsToFG = averageFeatureValue / antebetFreeRTP
// mysteryTrigger = 1 - (1 - 1/pulls) / (1 - triggerProb)
func ComputeEconomics(baseExpected, baseCalculated, freeExpected, freeCalculated, triggerProb, retriggerProb float64) FreeGameEconomics {
	fgLength := ExpectedFGLength(retriggerProb)

	e := FreeGameEconomics{
		FGTriggerProbability:     triggerProb,
		FGRetriggerProbability:   retriggerProb,
		ExpectedFGLength:         fgLength,
		OverallExpectedAverage:   OverallAverage(baseExpected, freeExpected, triggerProb, fgLength),
		OverallCalculatedAverage: OverallAverage(baseCalculated, freeCalculated, triggerProb, fgLength),
	}

	e.AntebetFreeRTP = (e.OverallCalculatedAverage*antebetFactor - baseCalculated) / antebetCost
	e.AverageFeatureValue = freeCalculated * fgLength / antebetCost

	if e.AntebetFreeRTP != 0 {
		e.ExpectedPullsToFG = e.AverageFeatureValue / e.AntebetFreeRTP
	}
	if e.ExpectedPullsToFG != 0 && triggerProb != 1 {
		e.MysteryTrigger = 1.0 - (1.0-1.0/e.ExpectedPullsToFG)/(1.0-triggerProb)
	}
	return e
}

// RoundTo 四舍五入到指定小数位
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Variance 总体方差
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}
