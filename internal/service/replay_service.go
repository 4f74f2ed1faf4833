package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/wfunc/slot-replay/internal/errors"
	"github.com/wfunc/slot-replay/internal/game/slot"
	"github.com/wfunc/slot-replay/internal/models"
	"github.com/wfunc/slot-replay/internal/replay"
	"github.com/wfunc/slot-replay/internal/repository"
	"github.com/wfunc/slot-replay/internal/scriptio"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// replayService 回放服务实现
type replayService struct {
	harness *replay.Harness
	repos   *repository.Manager
	log     *zap.Logger
}

// NewReplayService 创建回放服务，repos为nil时不持久化
func NewReplayService(harness *replay.Harness, repos *repository.Manager, log *zap.Logger) ReplayService {
	if log == nil {
		log = zap.NewNop()
	}
	return &replayService{
		harness: harness,
		repos:   repos,
		log:     log,
	}
}

// Persistent 是否写入数据库
func (s *replayService) Persistent() bool {
	return s.repos != nil
}

// gameConfig 按请求选择规则，变体与服务一致时沿用服务的规则
func (s *replayService) gameConfig(variant, gameType string) (*slot.GameConfig, error) {
	gt := slot.GameTypeBase
	switch gameType {
	case "", string(slot.GameTypeBase):
	case string(slot.GameTypeFree):
		gt = slot.GameTypeFree
	default:
		return nil, errors.Newf(errors.ErrInvalidParam, "未知的游戏类型: %q", gameType)
	}

	v := s.harness.Options().Variant
	if variant != "" && slot.Variant(variant) != v {
		cfg, err := slot.DefaultConfig(slot.Variant(variant), gt)
		if err != nil {
			return nil, errors.Newf(errors.ErrInvalidParam, "未知的规则变体: %q", variant).WithCause(err)
		}
		return cfg, nil
	}
	return s.harness.GameConfig(gt), nil
}

// ValidateBoard 校验盘面结构，违规时返回 *slot.BoardValidationError
func (s *replayService) ValidateBoard(ctx context.Context, req *BoardRequest) error {
	cfg, err := s.gameConfig(req.Variant, req.GameType)
	if err != nil {
		return err
	}
	return slot.NewBoardValidator(cfg).Validate(req.Board)
}

// StepBoard 对一个盘面执行单步消除
func (s *replayService) StepBoard(ctx context.Context, req *BoardRequest) (*StepResponse, error) {
	cfg, err := s.gameConfig(req.Variant, req.GameType)
	if err != nil {
		return nil, err
	}
	engine, err := slot.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	if err := engine.Validator().Validate(req.Board); err != nil {
		return nil, err
	}

	out := engine.Step(req.Board)
	patterns := make([]replay.PatternInfo, 0, len(out.Patterns))
	for _, sym := range out.Patterns.Symbols() {
		patterns = append(patterns, replay.PatternInfo{Symbol: sym, Count: len(out.Patterns[sym])})
	}

	return &StepResponse{
		Board:    out.Board,
		Score:    out.Score,
		HasMatch: out.HasMatch,
		Patterns: patterns,
		Terminal: engine.IsTerminal(out.Board),
	}, nil
}

// RunFile 读取脚本文件并回放
func (s *replayService) RunFile(ctx context.Context, path string) (*RunResult, error) {
	set, err := scriptio.Load(path)
	if err != nil {
		return nil, err
	}
	return s.RunScripts(ctx, filepath.Base(path), set)
}

// RunScripts 回放脚本集合，启用持久化时记录任务及每个脚本的比对结果
func (s *replayService) RunScripts(ctx context.Context, source string, set *replay.ScriptSet) (*RunResult, error) {
	result := &RunResult{RunID: uuid.New().String()}
	log := s.log.With(zap.String("run_id", result.RunID), zap.String("source", source))

	var run *models.ReplayRun
	if s.repos != nil {
		run = &models.ReplayRun{
			RunID:       result.RunID,
			Variant:     string(s.harness.Options().Variant),
			Source:      source,
			BaseScripts: len(set.Base),
			FreeScripts: len(set.Free),
			StartedAt:   time.Now(),
		}
		if err := s.repos.ReplayRun().Create(ctx, run); err != nil {
			return nil, err
		}
	}

	report, err := s.harness.Run(ctx, set)
	if err != nil {
		log.Error("回放失败", zap.Error(err))
		if run != nil {
			s.markFailed(run, err)
		}
		return nil, err
	}
	result.Report = report

	if run != nil {
		if err := fillRun(run, report); err != nil {
			return nil, err
		}
		if err := s.repos.ReplayRun().SaveResult(ctx, run, scriptRecords(report)); err != nil {
			log.Error("保存回放结果失败", zap.Error(err))
			return nil, err
		}
		result.Run = run
	}

	log.Info("回放完成",
		zap.Int("scripts", report.Combined.Scripts),
		zap.Int("failed", report.Combined.Failed),
		zap.Bool("all_matched", report.Combined.AllMatched()))
	return result, nil
}

// markFailed 记录失败状态，不覆盖原始错误
func (s *replayService) markFailed(run *models.ReplayRun, cause error) {
	if err := run.Transition(models.ReplayRunFailed); err != nil {
		s.log.Warn("回放任务状态异常", zap.String("run_id", run.RunID), zap.Error(err))
		return
	}
	now := time.Now()
	run.FinishedAt = &now
	run.Duration = now.Sub(run.StartedAt).Milliseconds()
	run.ErrorMsg = cause.Error()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repos.ReplayRun().Update(ctx, run); err != nil {
		s.log.Warn("更新回放任务状态失败", zap.String("run_id", run.RunID), zap.Error(err))
	}
}

func fillRun(run *models.ReplayRun, report *replay.Report) error {
	if err := run.Transition(models.ReplayRunCompleted); err != nil {
		return errors.Wrap(err, errors.ErrDataIntegrity)
	}
	c := report.Combined
	now := time.Now()

	run.FinishedAt = &now
	run.Duration = now.Sub(run.StartedAt).Milliseconds()
	run.Failed = c.Failed
	run.PayoutMismatches = c.PayoutMismatches
	run.StopMismatches = c.StopMismatches
	run.CascadingMismatches = c.CascadingMismatches
	run.TerminalLastBoard = c.TerminalLastBoard
	run.TotalExpected = c.TotalExpected
	run.TotalCalculated = c.TotalCalculated
	run.Economics = economicsData(report)
	return nil
}

// economicsData 免费游戏经济指标转为JSON列
func economicsData(report *replay.Report) models.JSONData {
	data, err := json.Marshal(report.Economics)
	if err != nil {
		return nil
	}
	var out models.JSONData
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	out["volatility"] = string(report.Volatility)
	return out
}

func scriptRecords(report *replay.Report) []*models.ScriptRecord {
	var records []*models.ScriptRecord
	for _, set := range []*replay.SetReport{report.Base, report.Free} {
		if set == nil {
			continue
		}
		for _, r := range set.Results {
			records = append(records, toRecord(set.GameType, r))
		}
	}
	return records
}

func toRecord(gameType slot.GameType, r replay.ScriptResult) *models.ScriptRecord {
	patterns, err := json.MarshalToString(r.FirstBoardPatterns)
	if err != nil {
		patterns = "[]"
	}
	return &models.ScriptRecord{
		GameType:           string(gameType),
		ScriptIndex:        r.Index,
		ExpectedPayout:     r.ExpectedPayout,
		CalculatedPayout:   r.CalculatedPayout,
		ExpectedStop:       r.ExpectedStop,
		ActualStop:         r.ActualStop,
		Multiplier:         r.Multiplier,
		PayoutMismatch:     r.PayoutMismatch,
		StopMismatch:       r.StopMismatch,
		CascadingMismatch:  r.CascadingMismatch,
		Mismatch:           r.Mismatched(),
		TerminalLastBoard:  r.TerminalLastBoard,
		Exhausted:          r.Exhausted,
		FirstBoardPatterns: patterns,
		ErrorMsg:           r.Error,
	}
}

func (s *replayService) requireRepos() error {
	if s.repos == nil {
		return errors.New(errors.ErrNotImplemented, "未启用回放持久化")
	}
	return nil
}

// GetRun 查询回放任务
func (s *replayService) GetRun(ctx context.Context, runID string) (*models.ReplayRun, error) {
	if err := s.requireRepos(); err != nil {
		return nil, err
	}
	return s.repos.ReplayRun().FindByRunID(ctx, runID)
}

// ListRuns 分页查询回放任务
func (s *replayService) ListRuns(ctx context.Context, q models.ReplayRunQuery, page, pageSize int) ([]*models.ReplayRun, *repository.Pagination, error) {
	if err := s.requireRepos(); err != nil {
		return nil, nil, err
	}
	p := repository.NewPagination(page, pageSize)
	runs, err := s.repos.ReplayRun().List(ctx, q, p)
	if err != nil {
		return nil, nil, err
	}
	return runs, p, nil
}

// ListScripts 分页查询某次任务的脚本记录
func (s *replayService) ListScripts(ctx context.Context, q models.ScriptRecordQuery, page, pageSize int) ([]*models.ScriptRecord, *repository.Pagination, error) {
	if err := s.requireRepos(); err != nil {
		return nil, nil, err
	}
	if _, err := s.repos.ReplayRun().FindByRunID(ctx, q.RunID); err != nil {
		return nil, nil, err
	}
	p := repository.NewPagination(page, pageSize)
	records, err := s.repos.ScriptRecord().Find(ctx, q, p)
	if err != nil {
		return nil, nil, err
	}
	return records, p, nil
}

// DeleteRun 删除回放任务
func (s *replayService) DeleteRun(ctx context.Context, runID string) error {
	if err := s.requireRepos(); err != nil {
		return err
	}
	return s.repos.ReplayRun().Delete(ctx, runID)
}
