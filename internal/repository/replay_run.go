package repository

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/wfunc/slot-replay/internal/errors"
	"github.com/wfunc/slot-replay/internal/logger"
	"github.com/wfunc/slot-replay/internal/models"
)

// 批量写入脚本记录的批大小
const scriptBatchSize = 200

// ReplayRunRepository 回放任务仓储接口
type ReplayRunRepository interface {
	BaseRepository
	Create(ctx context.Context, run *models.ReplayRun) error
	Update(ctx context.Context, run *models.ReplayRun) error
	SaveResult(ctx context.Context, run *models.ReplayRun, records []*models.ScriptRecord) error
	FindByRunID(ctx context.Context, runID string) (*models.ReplayRun, error)
	List(ctx context.Context, q models.ReplayRunQuery, p *Pagination) ([]*models.ReplayRun, error)
	Delete(ctx context.Context, runID string) error
}

// replayRunRepo 回放任务仓储实现
type replayRunRepo struct {
	*BaseRepo
}

// NewReplayRunRepository 创建回放任务仓储
func NewReplayRunRepository(db *gorm.DB) ReplayRunRepository {
	return &replayRunRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Create 创建回放任务
func (r *replayRunRepo) Create(ctx context.Context, run *models.ReplayRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert, "创建回放任务失败")
	}
	return nil
}

// Update 更新回放任务
func (r *replayRunRepo) Update(ctx context.Context, run *models.ReplayRun) error {
	if err := r.db.WithContext(ctx).Omit("Scripts").Save(run).Error; err != nil {
		return errors.Wrap(err, errors.ErrDatabaseUpdate, "更新回放任务失败")
	}
	return nil
}

// SaveResult 在一个事务中更新任务汇总并写入全部脚本记录
func (r *replayRunRepo) SaveResult(ctx context.Context, run *models.ReplayRun, records []*models.ScriptRecord) (err error) {
	start := time.Now()
	defer func() {
		logger.LogDatabaseOperation("save_result", "script_records", time.Since(start), err)
	}()

	return r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit("Scripts").Save(run).Error; err != nil {
			return errors.Wrap(err, errors.ErrDatabaseUpdate, "更新回放任务失败")
		}
		if len(records) == 0 {
			return nil
		}
		for _, rec := range records {
			rec.RunID = run.RunID
		}
		if err := tx.CreateInBatches(records, scriptBatchSize).Error; err != nil {
			return errors.Wrap(err, errors.ErrTransaction, "写入脚本记录失败")
		}
		return nil
	})
}

// FindByRunID 根据任务ID查找
func (r *replayRunRepo) FindByRunID(ctx context.Context, runID string) (*models.ReplayRun, error) {
	var run models.ReplayRun
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Newf(errors.ErrRunNotFound, "run_id=%s", runID)
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return &run, nil
}

// List 分页查询回放任务，按创建时间倒序
func (r *replayRunRepo) List(ctx context.Context, q models.ReplayRunQuery, p *Pagination) ([]*models.ReplayRun, error) {
	query := r.db.WithContext(ctx).Model(&models.ReplayRun{})
	if q.Variant != "" {
		query = query.Where("variant = ?", q.Variant)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	if err := query.Count(&p.Total).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}

	var runs []*models.ReplayRun
	err := query.Scopes(Paginate(p)).Order("created_at DESC").Order("id DESC").Find(&runs).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return runs, nil
}

// Delete 删除任务及其脚本记录
func (r *replayRunRepo) Delete(ctx context.Context, runID string) error {
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", runID).Delete(&models.ScriptRecord{}).Error; err != nil {
			return errors.Wrap(err, errors.ErrDatabaseDelete)
		}
		res := tx.Where("run_id = ?", runID).Delete(&models.ReplayRun{})
		if res.Error != nil {
			return errors.Wrap(res.Error, errors.ErrDatabaseDelete)
		}
		if res.RowsAffected == 0 {
			return errors.Newf(errors.ErrRunNotFound, "run_id=%s", runID)
		}
		return nil
	})
}
