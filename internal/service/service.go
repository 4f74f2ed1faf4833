package service

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/slot-replay/internal/config"
	"github.com/wfunc/slot-replay/internal/replay"
	"github.com/wfunc/slot-replay/internal/repository"
)

// Services 服务集合
type Services struct {
	Replay ReplayService
}

// NewServices 创建服务集合
// db为nil或未开启replay.persist时不写数据库
func NewServices(db *gorm.DB, cfg *config.ReplayConfig, log *zap.Logger) (*Services, error) {
	harness, err := replay.NewHarness(replay.OptionsFromConfig(*cfg))
	if err != nil {
		return nil, err
	}

	var repos *repository.Manager
	if db != nil && cfg.Persist {
		repos = repository.NewManager(db)
	}

	return &Services{
		Replay: NewReplayService(harness, repos, log),
	}, nil
}
