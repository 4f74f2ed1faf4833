package scriptio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/wfunc/slot-replay/internal/errors"
	"github.com/wfunc/slot-replay/internal/game/slot"
	"github.com/wfunc/slot-replay/internal/replay"
)

// 导出金额保留的小数位
const payoutPlaces = 6

// GameSummary 单组脚本的赔付统计
type GameSummary struct {
	TotalExpectedPayout     float64 `json:"totalExpectedPayout"`
	TotalCalculatedPayout   float64 `json:"totalCalculatedPayout"`
	AverageExpectedPayout   float64 `json:"averageExpectedPayout"`
	AverageCalculatedPayout float64 `json:"averageCalculatedPayout"`
	CalculatedVariance      float64 `json:"calculatedVariance"`
	CalculatedStdDev        float64 `json:"calculatedStdDev"`
	TerminalLastBoard       int     `json:"terminalLastBoard"`

	// 仅免费游戏: 按触发概率加权的总赔付
	WeightedExpectedPayout   *float64 `json:"weightedExpectedPayout,omitempty"`
	WeightedCalculatedPayout *float64 `json:"weightedCalculatedPayout,omitempty"`
}

// CombinedSummary 基础+按触发概率加权的免费赔付
type CombinedSummary struct {
	TotalExpectedPayout    float64 `json:"totalExpectedPayout"`
	TotalCalculatedPayout  float64 `json:"totalCalculatedPayout"`
	AveragePerBaseGameSpin float64 `json:"averagePerBaseGameSpin"`
}

// MismatchSummary 不一致统计
type MismatchSummary struct {
	PayoutMismatches    int `json:"payoutMismatches"`
	StopMismatches      int `json:"stopMismatches"`
	CascadingMismatches int `json:"cascadingMismatches"`
	Failed              int `json:"failed"`
}

// ExportSummary 导出文件的summary段
type ExportSummary struct {
	TotalScripts         int                    `json:"totalScripts"`
	BaseScripts          int                    `json:"baseScripts"`
	FreeScripts          int                    `json:"freeScripts"`
	FGTriggerProbability float64                `json:"fgTriggerProbability"`
	BaseGame             GameSummary            `json:"baseGame"`
	FreeGame             GameSummary            `json:"freeGame"`
	Combined             CombinedSummary        `json:"combined"`
	Mismatches           MismatchSummary        `json:"mismatches"`
	Economics            slot.FreeGameEconomics `json:"economics"`
}

// ExportDocument 回放结果导出文件
type ExportDocument struct {
	Summary     ExportSummary         `json:"summary"`
	BaseScripts []replay.ScriptResult `json:"baseScripts"`
	FreeScripts []replay.ScriptResult `json:"freeScripts"`
}

// BuildDocument 由回放报告生成导出文件内容
func BuildDocument(report *replay.Report) ExportDocument {
	base, free := setOrEmpty(report.Base), setOrEmpty(report.Free)
	trig := decimal.NewFromFloat(report.Economics.FGTriggerProbability)

	combinedExpected := base.Summary.TotalExpected.Add(trig.Mul(free.Summary.TotalExpected))
	combinedCalculated := base.Summary.TotalCalculated.Add(trig.Mul(free.Summary.TotalCalculated))

	combined := CombinedSummary{
		TotalExpectedPayout:   round(combinedExpected),
		TotalCalculatedPayout: round(combinedCalculated),
	}
	if n := len(base.Results); n > 0 {
		combined.AveragePerBaseGameSpin = round(combinedExpected.Div(decimal.NewFromInt(int64(n))))
	}

	freeGame := gameSummary(free.Summary)
	weightedExpected := round(trig.Mul(free.Summary.TotalExpected))
	weightedCalculated := round(trig.Mul(free.Summary.TotalCalculated))
	freeGame.WeightedExpectedPayout = &weightedExpected
	freeGame.WeightedCalculatedPayout = &weightedCalculated

	all := report.Combined
	return ExportDocument{
		Summary: ExportSummary{
			TotalScripts:         len(base.Results) + len(free.Results),
			BaseScripts:          len(base.Results),
			FreeScripts:          len(free.Results),
			FGTriggerProbability: slot.RoundTo(report.Economics.FGTriggerProbability, 4),
			BaseGame:             gameSummary(base.Summary),
			FreeGame:             freeGame,
			Combined:             combined,
			Mismatches: MismatchSummary{
				PayoutMismatches:    all.PayoutMismatches,
				StopMismatches:      all.StopMismatches,
				CascadingMismatches: all.CascadingMismatches,
				Failed:              all.Failed,
			},
			Economics: report.Economics,
		},
		BaseScripts: base.Results,
		FreeScripts: free.Results,
	}
}

func setOrEmpty(s *replay.SetReport) *replay.SetReport {
	if s == nil {
		return &replay.SetReport{Results: []replay.ScriptResult{}}
	}
	if s.Results == nil {
		s.Results = []replay.ScriptResult{}
	}
	return s
}

func gameSummary(s replay.Summary) GameSummary {
	return GameSummary{
		TotalExpectedPayout:     round(s.TotalExpected),
		TotalCalculatedPayout:   round(s.TotalCalculated),
		AverageExpectedPayout:   slot.RoundTo(s.ExpectedAverage(), payoutPlaces),
		AverageCalculatedPayout: slot.RoundTo(s.CalculatedAverage(), payoutPlaces),
		CalculatedVariance:      slot.RoundTo(s.Variance(), payoutPlaces),
		CalculatedStdDev:        slot.RoundTo(s.StdDev(), payoutPlaces),
		TerminalLastBoard:       s.TerminalLastBoard,
	}
}

func round(d decimal.Decimal) float64 {
	return d.Round(payoutPlaces).InexactFloat64()
}

// WriteReport 以缩进JSON写出回放报告
func WriteReport(w io.Writer, report *replay.Report) error {
	data, err := json.MarshalIndent(BuildDocument(report), "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrExportFailed, "序列化回放报告失败")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, errors.ErrExportFailed, "写出回放报告失败")
	}
	return nil
}

// ExportReport 导出回放报告到文件
func ExportReport(path string, report *replay.Report) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteReport(w, report)
	})
}

// ExportMultiplierTable 导出免费游戏倍数表
func ExportMultiplierTable(path string, table slot.MultiplierTable) error {
	return writeFile(path, func(w io.Writer) error {
		data, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return errors.Wrap(err, errors.ErrExportFailed, "序列化倍数表失败")
		}
		_, err = w.Write(data)
		return err
	})
}

// FormatMysteryTrigger 神秘触发概率，固定4位小数
func FormatMysteryTrigger(rate float64) string {
	return fmt.Sprintf("{\n  \"double_chance_rate\": %.4f\n}", slot.RoundTo(rate, 4))
}

// ExportMysteryTrigger 导出神秘触发概率
func ExportMysteryTrigger(path string, rate float64) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, FormatMysteryTrigger(rate))
		return err
	})
}

func writeFile(path string, write func(w io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, errors.ErrExportFailed, "创建目录失败: %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrExportFailed, "创建文件失败: %s", path)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, errors.ErrExportFailed, "写入文件失败: %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrExportFailed, "关闭文件失败: %s", path)
	}
	return nil
}
