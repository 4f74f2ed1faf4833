package replay

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wfunc/slot-replay/internal/config"
	"github.com/wfunc/slot-replay/internal/errors"
	"github.com/wfunc/slot-replay/internal/game/slot"
	"github.com/wfunc/slot-replay/internal/logger"
)

// DefaultDisplayLimit 每组脚本最多详细输出的不一致数量
const DefaultDisplayLimit = 5

// Options 回放参数
type Options struct {
	Variant      slot.Variant
	Workers      int
	DisplayLimit int
	Cost         float64
	Volatility   slot.Volatility

	FGTriggerProbability   float64
	FGRetriggerProbability float64
}

// OptionsFromConfig 从进程配置生成回放参数
func OptionsFromConfig(c config.ReplayConfig) Options {
	return Options{
		Variant:                slot.Variant(c.Variant),
		Workers:                c.Workers,
		DisplayLimit:           c.DisplayLimit,
		Cost:                   c.Cost,
		Volatility:             slot.ParseVolatility(c.Volatility),
		FGTriggerProbability:   c.FGTriggerProbability,
		FGRetriggerProbability: c.FGRetriggerProbability,
	}
}

// Harness 脚本回放与一致性校验
// 每个脚本使用独立的引擎，脚本之间没有共享的可变状态
type Harness struct {
	opts    Options
	configs map[slot.GameType]*slot.GameConfig
	log     *zap.Logger
}

// NewHarness 创建回放器，基础/免费两套规则在此时确定
func NewHarness(opts Options) (*Harness, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.DisplayLimit < 0 {
		opts.DisplayLimit = DefaultDisplayLimit
	}
	if opts.Volatility == "" {
		opts.Volatility = slot.VolatilityLow
	}

	h := &Harness{
		opts:    opts,
		configs: make(map[slot.GameType]*slot.GameConfig, 2),
		log:     logger.GetModuleLogger("replay"),
	}
	for _, gt := range []slot.GameType{slot.GameTypeBase, slot.GameTypeFree} {
		cfg, err := slot.DefaultConfig(opts.Variant, gt)
		if err != nil {
			return nil, err
		}
		if opts.Cost > 0 {
			cfg.Cost = opts.Cost
		}
		h.configs[gt] = cfg
	}
	return h, nil
}

// Options 返回回放参数
func (h *Harness) Options() Options {
	return h.opts
}

// GameConfig 指定游戏类型的规则副本
func (h *Harness) GameConfig(gameType slot.GameType) *slot.GameConfig {
	return h.configs[gameType].Clone()
}

// Replay 用给定规则回放一个脚本
func Replay(cfg *slot.GameConfig, script *Script) (slot.ReplayOutcome, error) {
	engine, err := slot.NewEngine(cfg)
	if err != nil {
		return slot.ReplayOutcome{}, err
	}
	return engine.Steps(script.Boards, script.Multiplier())
}

// ReplayScript 回放单个脚本并与脚本声明的结果比对
// 出错或panic都记录在结果的Error中，不会向上传播
func (h *Harness) ReplayScript(gameType slot.GameType, script *Script) (result ScriptResult) {
	result = ScriptResult{
		Index:              script.Index,
		ExpectedPayout:     script.Payout,
		ExpectedStop:       script.Stop,
		FirstBoardPatterns: []PatternInfo{},
	}

	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r, debug.Stack())
			result.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	engine, err := slot.NewEngine(h.configs[gameType])
	if err != nil {
		result.Error = err.Error()
		return result
	}

	outcome, err := engine.Steps(script.Boards, script.Multiplier())
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.CalculatedPayout = outcome.TotalScore
	result.ActualStop = outcome.Stop
	result.Multiplier = outcome.Multiplier
	result.Exhausted = outcome.Exhausted
	result.StopMismatch = outcome.Stop != script.Stop
	result.CascadingMismatch = !outcome.AllCascadeMatched
	result.PayoutMismatch = script.Payout != outcome.TotalScore

	if n := len(script.Boards); n > 0 {
		result.TerminalLastBoard = engine.IsTerminal(script.Boards[n-1])
	}
	if len(outcome.Patterns) > 0 {
		result.FirstBoardPatterns = patternInfos(outcome.Patterns[0])
	}
	return result
}

func patternInfos(patterns slot.MatchPatterns) []PatternInfo {
	infos := make([]PatternInfo, 0, len(patterns))
	for _, symbol := range patterns.Symbols() {
		if n := len(patterns[symbol]); n > 0 {
			infos = append(infos, PatternInfo{Symbol: symbol, Count: n})
		}
	}
	return infos
}

// SetReport 一组脚本的回放报告
type SetReport struct {
	GameType   slot.GameType    `json:"gameType"`
	Results    []ScriptResult   `json:"results"`
	Summary    Summary          `json:"summary"`
	Uniqueness FirstBoardReport `json:"uniqueness"`
	Duration   time.Duration    `json:"duration"`
}

// ReplaySet 并行回放一组脚本，结果按index升序排列
// 任一脚本没有盘面时整组放弃并返回 ErrEmptyScript
func (h *Harness) ReplaySet(ctx context.Context, scripts map[int]*Script, gameType slot.GameType) (*SetReport, error) {
	started := time.Now()

	indices := make([]int, 0, len(scripts))
	for index, s := range scripts {
		if s == nil || len(s.Boards) == 0 {
			return nil, errors.Newf(errors.ErrEmptyScript, "%s 脚本 %d 没有盘面", gameType, index)
		}
		indices = append(indices, index)
	}
	sort.Ints(indices)

	results := make([]ScriptResult, len(indices))
	var shown atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.opts.Workers)

	for i, index := range indices {
		if gctx.Err() != nil {
			break
		}
		script := scripts[index]
		g.Go(func() error {
			r := h.ReplayScript(gameType, script)
			results[i] = r
			h.report(gameType, script, r, &shown)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrReplayFailed, "%s 脚本回放被取消", gameType)
	}

	report := &SetReport{
		GameType:   gameType,
		Results:    results,
		Summary:    Summarize(results),
		Uniqueness: CheckFirstBoardUniqueness(scripts),
		Duration:   time.Since(started),
	}

	h.log.Info("replay_set_done",
		zap.String("game_type", string(gameType)),
		zap.Int("scripts", len(results)),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("payout_mismatches", report.Summary.PayoutMismatches),
		zap.Int("stop_mismatches", report.Summary.StopMismatches),
		zap.Int("cascading_mismatches", report.Summary.CascadingMismatches),
		zap.Int("terminal_last_board", report.Summary.TerminalLastBoard),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// report 输出前DisplayLimit个不一致或出错的脚本
func (h *Harness) report(gameType slot.GameType, script *Script, r ScriptResult, shown *atomic.Int32) {
	if !r.Failed() && !r.StopMismatch && !r.CascadingMismatch {
		return
	}
	if int(shown.Add(1)) > h.opts.DisplayLimit {
		return
	}

	if r.Failed() {
		logger.LogScriptError(string(gameType), r.Index, errors.New(errors.ErrReplayFailed, r.Error))
		return
	}

	logger.LogReplayMismatch(string(gameType), r.Index, r.ExpectedStop, r.ActualStop,
		r.ExpectedPayout, r.CalculatedPayout, !r.CascadingMismatch)
	if ce := h.log.Check(zap.DebugLevel, "replay_mismatch_boards"); ce != nil {
		boards := make([]string, len(script.Boards))
		for i, b := range script.Boards {
			boards[i] = b.String()
		}
		ce.Write(zap.Int("index", r.Index), zap.Strings("boards", boards))
	}
}

// Report 基础+免费两组脚本的完整报告
type Report struct {
	Base      *SetReport             `json:"base"`
	Free      *SetReport             `json:"free"`
	Combined  Summary                `json:"combined"`
	Economics slot.FreeGameEconomics `json:"economics"`

	MultiplierTable slot.MultiplierTable `json:"multiplierTable"`
	Volatility      slot.Volatility      `json:"volatility"`
}

// Run 先回放基础脚本再回放免费脚本，并推导RTP指标
func (h *Harness) Run(ctx context.Context, set *ScriptSet) (*Report, error) {
	if set == nil {
		set = NewScriptSet()
	}

	base, err := h.ReplaySet(ctx, set.Base, slot.GameTypeBase)
	if err != nil {
		return nil, err
	}
	free, err := h.ReplaySet(ctx, set.Free, slot.GameTypeFree)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Base:     base,
		Free:     free,
		Combined: base.Summary.Merge(free.Summary),
		Economics: slot.ComputeEconomics(
			base.Summary.ExpectedAverage(), base.Summary.CalculatedAverage(),
			free.Summary.ExpectedAverage(), free.Summary.CalculatedAverage(),
			h.opts.FGTriggerProbability, h.opts.FGRetriggerProbability,
		),
		MultiplierTable: slot.GetMultiplierTable(h.opts.Volatility),
		Volatility:      h.opts.Volatility,
	}

	h.log.Info("replay_done",
		zap.Int("base_scripts", len(base.Results)),
		zap.Int("free_scripts", len(free.Results)),
		zap.Bool("all_matched", report.Combined.AllMatched()),
		zap.Float64("overall_calculated_average", report.Economics.OverallCalculatedAverage),
		zap.Float64("mystery_trigger", report.Economics.MysteryTrigger),
	)
	return report, nil
}
