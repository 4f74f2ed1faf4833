package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/wfunc/slot-replay/internal/errors"
	"github.com/wfunc/slot-replay/internal/models"
)

// ReplayRunRepositoryTestSuite 回放任务仓储测试套件
type ReplayRunRepositoryTestSuite struct {
	suite.Suite
	db      *gorm.DB
	manager *Manager
}

func (suite *ReplayRunRepositoryTestSuite) SetupSuite() {
	suite.db = SetupTestDB()
	suite.manager = NewManager(suite.db)
}

func (suite *ReplayRunRepositoryTestSuite) TearDownSuite() {
	CleanupTestDB(suite.db)
}

func (suite *ReplayRunRepositoryTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM script_records")
	suite.db.Exec("DELETE FROM replay_runs")
}

func (suite *ReplayRunRepositoryTestSuite) TestCreateAndFind() {
	ctx := context.Background()
	repo := suite.manager.ReplayRun()

	run := CreateTestReplayRun("run-1", "cluster")
	run.Status = ""
	require.NoError(suite.T(), repo.Create(ctx, run))
	assert.NotZero(suite.T(), run.ID)
	assert.Equal(suite.T(), models.ReplayRunRunning, run.Status)

	found, err := repo.FindByRunID(ctx, "run-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "cluster", found.Variant)
	assert.True(suite.T(), decimal.RequireFromString("45.5").Equal(found.TotalExpected))

	_, err = repo.FindByRunID(ctx, "missing")
	assert.True(suite.T(), errors.Is(err, errors.ErrRunNotFound))

	// run_id唯一
	assert.True(suite.T(), errors.Is(repo.Create(ctx, CreateTestReplayRun("run-1", "ways")), errors.ErrDatabaseInsert))
}

func (suite *ReplayRunRepositoryTestSuite) TestSaveResult() {
	ctx := context.Background()
	repo := suite.manager.ReplayRun()

	run := CreateTestReplayRun("run-2", "ways")
	require.NoError(suite.T(), repo.Create(ctx, run))

	now := time.Now()
	run.Status = models.ReplayRunCompleted
	run.FinishedAt = &now
	run.PayoutMismatches = 2
	records := append(CreateTestScriptRecords("base", 250, 3, 17), CreateTestScriptRecords("free", 5)...)
	require.NoError(suite.T(), repo.SaveResult(ctx, run, records))

	found, err := repo.FindByRunID(ctx, "run-2")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ReplayRunCompleted, found.Status)
	assert.NotNil(suite.T(), found.FinishedAt)
	assert.False(suite.T(), found.AllMatched())

	scripts := suite.manager.ScriptRecord()
	p := NewPagination(1, 50)
	page, err := scripts.Find(ctx, models.ScriptRecordQuery{RunID: "run-2"}, p)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(255), p.Total)
	assert.Len(suite.T(), page, 50)
	assert.Equal(suite.T(), 6, p.TotalPages())
	assert.Equal(suite.T(), "base", page[0].GameType)
	assert.Equal(suite.T(), 0, page[0].ScriptIndex)

	p = NewPagination(1, 100)
	bad, err := scripts.Find(ctx, models.ScriptRecordQuery{RunID: "run-2", MismatchOnly: true}, p)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), bad, 2)
	assert.Equal(suite.T(), []int{3, 17}, []int{bad[0].ScriptIndex, bad[1].ScriptIndex})

	p = NewPagination(1, 100)
	free, err := scripts.Find(ctx, models.ScriptRecordQuery{RunID: "run-2", GameType: "free"}, p)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), free, 5)

	counts, err := scripts.CountMismatches(ctx, "run-2")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), map[string]int64{"base": 2}, counts)
}

func (suite *ReplayRunRepositoryTestSuite) TestList() {
	ctx := context.Background()
	repo := suite.manager.ReplayRun()

	for i, variant := range []string{"cluster", "ways", "cluster"} {
		run := CreateTestReplayRun(string(rune('a'+i)), variant)
		require.NoError(suite.T(), repo.Create(ctx, run))
	}

	p := NewPagination(1, 10)
	runs, err := repo.List(ctx, models.ReplayRunQuery{}, p)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), p.Total)
	require.Len(suite.T(), runs, 3)
	assert.Equal(suite.T(), "c", runs[0].RunID, "最新的任务在前")

	p = NewPagination(1, 10)
	runs, err = repo.List(ctx, models.ReplayRunQuery{Variant: "cluster"}, p)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), runs, 2)

	p = NewPagination(1, 10)
	runs, err = repo.List(ctx, models.ReplayRunQuery{Status: models.ReplayRunCompleted}, p)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), runs)
}

func (suite *ReplayRunRepositoryTestSuite) TestDelete() {
	ctx := context.Background()
	repo := suite.manager.ReplayRun()

	run := CreateTestReplayRun("run-3", "cluster")
	require.NoError(suite.T(), repo.Create(ctx, run))
	require.NoError(suite.T(), repo.SaveResult(ctx, run, CreateTestScriptRecords("base", 3)))

	require.NoError(suite.T(), repo.Delete(ctx, "run-3"))
	_, err := repo.FindByRunID(ctx, "run-3")
	assert.True(suite.T(), errors.Is(err, errors.ErrRunNotFound))

	var n int64
	suite.db.Model(&models.ScriptRecord{}).Where("run_id = ?", "run-3").Count(&n)
	assert.Zero(suite.T(), n)

	assert.True(suite.T(), errors.Is(repo.Delete(ctx, "run-3"), errors.ErrRunNotFound))
}

func (suite *ReplayRunRepositoryTestSuite) TestWithTxRollback() {
	ctx := context.Background()

	err := suite.manager.WithTx(ctx, func(tx *Manager) error {
		if err := tx.ReplayRun().Create(ctx, CreateTestReplayRun("run-4", "cluster")); err != nil {
			return err
		}
		return errors.New(errors.ErrUnknown, "rollback")
	})
	assert.Error(suite.T(), err)

	_, err = suite.manager.ReplayRun().FindByRunID(ctx, "run-4")
	assert.True(suite.T(), errors.Is(err, errors.ErrRunNotFound))
}

func TestReplayRunRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ReplayRunRepositoryTestSuite))
}

func TestPagination(t *testing.T) {
	p := NewPagination(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(3, 500)
	assert.Equal(t, 100, p.PageSize)
	assert.Equal(t, 200, p.Offset())

	p.Total = 201
	assert.Equal(t, 3, p.TotalPages())
}
