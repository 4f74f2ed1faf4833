package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/slot-replay/internal/config"
	"github.com/wfunc/slot-replay/internal/game/slot"
	"github.com/wfunc/slot-replay/internal/replay"
	"github.com/wfunc/slot-replay/internal/scriptio"
)

func testReport(t *testing.T) *replay.Report {
	t.Helper()
	h, err := replay.NewHarness(replay.Options{
		Variant:                slot.VariantCluster,
		Workers:                1,
		FGTriggerProbability:   slot.DefaultFGTriggerProbability,
		FGRetriggerProbability: slot.DefaultFGRetriggerProbability,
	})
	require.NoError(t, err)

	set := replay.NewScriptSet()
	set.Base[0] = &replay.Script{
		Index: 0,
		Boards: []slot.Board{{
			{4, 5, 7, 8, 0, 1},
			{7, 8, 0, 1, 2, 4},
			{5, 6, 7, 8, 0, 1},
			{2, 4, 5, 6, 7, 8},
			{0, 1, 2, 4, 5, 6},
		}},
		Stop:               1,
		SpecialMultipliers: 1,
	}
	report, err := h.Run(context.Background(), set)
	require.NoError(t, err)
	return report
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, "run-1", scriptio.BuildDocument(testReport(t)))

	out := buf.String()
	assert.Contains(t, out, "回放任务: run-1")
	assert.Contains(t, out, "脚本总数: 1 (基础 1 / 免费 0)")
	assert.Contains(t, out, "赔付不一致: 0")
}

func TestExportAll(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.ReplayConfig{
		ExportPath:          filepath.Join(dir, "script_results.json"),
		MultiplierTablePath: filepath.Join(dir, "multiplier_table.json"),
		MysteryTriggerPath:  filepath.Join(dir, "mystery_trigger.json"),
	}
	require.NoError(t, exportAll(cfg, testReport(t)))

	for _, p := range []string{cfg.ExportPath, cfg.MultiplierTablePath, cfg.MysteryTriggerPath} {
		assert.FileExists(t, p)
	}

	// 路径为空时跳过
	require.NoError(t, exportAll(&config.ReplayConfig{}, testReport(t)))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
