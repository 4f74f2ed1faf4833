package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/slot-replay/internal/models"
)

// SetupTestDB 为测试套件设置内存测试数据库
func SetupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// 内存库每个连接都是独立的库
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.ReplayRun{}, &models.ScriptRecord{}); err != nil {
		panic(err)
	}
	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// CreateTestReplayRun 创建测试回放任务
func CreateTestReplayRun(runID, variant string) *models.ReplayRun {
	return &models.ReplayRun{
		RunID:           runID,
		Variant:         variant,
		Source:          "scripts.json",
		BaseScripts:     2,
		FreeScripts:     1,
		TotalExpected:   decimal.RequireFromString("45.5"),
		TotalCalculated: decimal.RequireFromString("45.5"),
		StartedAt:       time.Now(),
	}
}

// CreateTestScriptRecords 创建测试脚本记录，mismatch 指定的index为不一致
func CreateTestScriptRecords(gameType string, n int, mismatch ...int) []*models.ScriptRecord {
	bad := make(map[int]bool, len(mismatch))
	for _, i := range mismatch {
		bad[i] = true
	}

	records := make([]*models.ScriptRecord, 0, n)
	for i := 0; i < n; i++ {
		rec := &models.ScriptRecord{
			GameType:           gameType,
			ScriptIndex:        i,
			ExpectedPayout:     float64(i),
			CalculatedPayout:   float64(i),
			ExpectedStop:       2,
			ActualStop:         2,
			Multiplier:         1,
			TerminalLastBoard:  true,
			FirstBoardPatterns: fmt.Sprintf(`[{"symbol":%d,"count":8}]`, i%9),
		}
		if bad[i] {
			rec.CalculatedPayout++
			rec.PayoutMismatch = true
			rec.Mismatch = true
		}
		records = append(records, rec)
	}
	return records
}
