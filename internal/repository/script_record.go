package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wfunc/slot-replay/internal/errors"
	"github.com/wfunc/slot-replay/internal/models"
)

// ScriptRecordRepository 脚本记录仓储接口
type ScriptRecordRepository interface {
	BaseRepository
	Find(ctx context.Context, q models.ScriptRecordQuery, p *Pagination) ([]*models.ScriptRecord, error)
	CountMismatches(ctx context.Context, runID string) (map[string]int64, error)
}

// scriptRecordRepo 脚本记录仓储实现
type scriptRecordRepo struct {
	*BaseRepo
}

// NewScriptRecordRepository 创建脚本记录仓储
func NewScriptRecordRepository(db *gorm.DB) ScriptRecordRepository {
	return &scriptRecordRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Find 分页查询某次任务的脚本记录，按游戏类型和脚本index排序
func (r *scriptRecordRepo) Find(ctx context.Context, q models.ScriptRecordQuery, p *Pagination) ([]*models.ScriptRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.ScriptRecord{}).Where("run_id = ?", q.RunID)
	if q.GameType != "" {
		query = query.Where("game_type = ?", q.GameType)
	}
	if q.MismatchOnly {
		query = query.Where("mismatch = ?", true)
	}

	if err := query.Count(&p.Total).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}

	var records []*models.ScriptRecord
	err := query.Scopes(Paginate(p)).Order("game_type ASC").Order("script_index ASC").Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return records, nil
}

// CountMismatches 按游戏类型统计不一致脚本数
func (r *scriptRecordRepo) CountMismatches(ctx context.Context, runID string) (map[string]int64, error) {
	var rows []struct {
		GameType string
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&models.ScriptRecord{}).
		Select("game_type, COUNT(*) AS count").
		Where("run_id = ? AND mismatch = ?", runID, true).
		Group("game_type").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.GameType] = row.Count
	}
	return counts, nil
}
