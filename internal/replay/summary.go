package replay

import (
	"math"

	"github.com/shopspring/decimal"
)

// Summary 一组回放结果的汇总
// 计数与金额都是可加的，Merge 满足结合律和交换律，可以按任意顺序归并并行结果
type Summary struct {
	Scripts             int `json:"scripts"` // 成功回放的脚本数
	Failed              int `json:"failed"`  // 回放出错的脚本数
	PayoutMismatches    int `json:"payoutMismatches"`
	StopMismatches      int `json:"stopMismatches"`
	CascadingMismatches int `json:"cascadingMismatches"`
	TerminalLastBoard   int `json:"terminalLastBoard"` // 最后一个盘面为终止状态的脚本数
	Exhausted           int `json:"exhausted"`

	TotalExpected   decimal.Decimal `json:"totalExpectedPayout"`
	TotalCalculated decimal.Decimal `json:"totalCalculatedPayout"`

	// 计算赔付的平方和，用于方差
	SumSquares decimal.Decimal `json:"-"`
}

// SummaryOf 单个结果的汇总，出错的脚本只计入Failed
func SummaryOf(r ScriptResult) Summary {
	if r.Failed() {
		return Summary{Failed: 1}
	}

	calculated := decimal.NewFromFloat(r.CalculatedPayout)
	s := Summary{
		Scripts:         1,
		TotalExpected:   decimal.NewFromFloat(r.ExpectedPayout),
		TotalCalculated: calculated,
		SumSquares:      calculated.Mul(calculated),
	}
	if r.PayoutMismatch {
		s.PayoutMismatches = 1
	}
	if r.StopMismatch {
		s.StopMismatches = 1
	}
	if r.CascadingMismatch {
		s.CascadingMismatches = 1
	}
	if r.TerminalLastBoard {
		s.TerminalLastBoard = 1
	}
	if r.Exhausted {
		s.Exhausted = 1
	}
	return s
}

// Summarize 汇总一组结果
func Summarize(results []ScriptResult) Summary {
	var s Summary
	for _, r := range results {
		s = s.Merge(SummaryOf(r))
	}
	return s
}

// Merge 归并两个汇总
func (s Summary) Merge(o Summary) Summary {
	return Summary{
		Scripts:             s.Scripts + o.Scripts,
		Failed:              s.Failed + o.Failed,
		PayoutMismatches:    s.PayoutMismatches + o.PayoutMismatches,
		StopMismatches:      s.StopMismatches + o.StopMismatches,
		CascadingMismatches: s.CascadingMismatches + o.CascadingMismatches,
		TerminalLastBoard:   s.TerminalLastBoard + o.TerminalLastBoard,
		Exhausted:           s.Exhausted + o.Exhausted,
		TotalExpected:       s.TotalExpected.Add(o.TotalExpected),
		TotalCalculated:     s.TotalCalculated.Add(o.TotalCalculated),
		SumSquares:          s.SumSquares.Add(o.SumSquares),
	}
}

// ExpectedAverage 脚本声明赔付的平均值
func (s Summary) ExpectedAverage() float64 {
	if s.Scripts == 0 {
		return 0
	}
	return s.TotalExpected.Div(decimal.NewFromInt(int64(s.Scripts))).InexactFloat64()
}

// CalculatedAverage 回放计算赔付的平均值
func (s Summary) CalculatedAverage() float64 {
	if s.Scripts == 0 {
		return 0
	}
	return s.TotalCalculated.Div(decimal.NewFromInt(int64(s.Scripts))).InexactFloat64()
}

// Variance 计算赔付的总体方差
func (s Summary) Variance() float64 {
	if s.Scripts == 0 {
		return 0
	}
	n := decimal.NewFromInt(int64(s.Scripts))
	mean := s.TotalCalculated.Div(n)
	v := s.SumSquares.Div(n).Sub(mean.Mul(mean))
	if v.IsNegative() {
		return 0
	}
	return v.InexactFloat64()
}

// StdDev 计算赔付的标准差
func (s Summary) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// AllMatched 没有任何不一致且没有出错
func (s Summary) AllMatched() bool {
	return s.Failed == 0 && s.PayoutMismatches == 0 && s.StopMismatches == 0 && s.CascadingMismatches == 0
}

// AllTerminal 所有脚本的最后一个盘面都是终止状态
func (s Summary) AllTerminal() bool {
	return s.TerminalLastBoard == s.Scripts
}
