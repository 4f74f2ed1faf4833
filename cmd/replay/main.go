package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/slot-replay/internal/config"
	"github.com/wfunc/slot-replay/internal/database"
	"github.com/wfunc/slot-replay/internal/logger"
	"github.com/wfunc/slot-replay/internal/replay"
	"github.com/wfunc/slot-replay/internal/scriptio"
	"github.com/wfunc/slot-replay/internal/service"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// 退出码
const (
	exitOK       = 0
	exitError    = 1
	exitMismatch = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		scripts     = flag.String("scripts", "", "脚本文件（覆盖 replay.scripts_path）")
		variant     = flag.String("variant", "", "规则变体 cluster | ways（覆盖 replay.variant）")
		exportPath  = flag.String("export", "", "结果导出文件（覆盖 replay.export_path）")
		workers     = flag.Int("workers", 0, "并行回放数（覆盖 replay.workers）")
		volatility  = flag.String("volatility", "", "倍数表波动 low | high（覆盖 replay.volatility）")
		persist     = flag.Bool("persist", false, "回放结果写入数据库")
		strict      = flag.Bool("strict", false, "存在不一致时以退出码2结束")
		showVersion = flag.Bool("version", false, "显示版本信息")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		return exitOK
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		return exitError
	}

	// 只覆盖命令行显式给出的参数
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scripts":
			cfg.Replay.ScriptsPath = *scripts
		case "variant":
			cfg.Replay.Variant = *variant
		case "export":
			cfg.Replay.ExportPath = *exportPath
		case "workers":
			cfg.Replay.Workers = *workers
		case "volatility":
			cfg.Replay.Volatility = *volatility
		case "persist":
			cfg.Replay.Persist = *persist
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Printf("配置无效: %v\n", err)
		return exitError
	}

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		return exitError
	}
	defer logger.Sync()

	var db *gorm.DB
	if cfg.Replay.Persist {
		if db, err = openDatabase(&cfg.Database); err != nil {
			logger.Error("初始化数据库失败", zap.Error(err))
			return exitError
		}
		defer database.Close()
	}

	services, err := service.NewServices(db, &cfg.Replay, logger.GetModuleLogger("replay"))
	if err != nil {
		logger.Error("创建回放服务失败", zap.Error(err))
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := services.Replay.RunFile(ctx, cfg.Replay.ScriptsPath)
	if err != nil {
		logger.Error("脚本回放失败", zap.String("scripts", cfg.Replay.ScriptsPath), zap.Error(err))
		return exitError
	}

	report := result.Report
	printSummary(os.Stdout, result.RunID, scriptio.BuildDocument(report))

	if err := exportAll(&cfg.Replay, report); err != nil {
		logger.Error("导出结果失败", zap.Error(err))
		return exitError
	}

	if *strict && !report.Combined.AllMatched() {
		return exitMismatch
	}
	return exitOK
}

func openDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	if err := database.Init(cfg); err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(); err != nil {
			return nil, err
		}
	}
	return database.GetDB(), nil
}

// exportAll 导出回放报告、倍数表和神秘触发概率，路径为空的项跳过
func exportAll(cfg *config.ReplayConfig, report *replay.Report) error {
	if cfg.ExportPath != "" {
		if err := scriptio.ExportReport(cfg.ExportPath, report); err != nil {
			return err
		}
		logger.Info("回放报告已导出", zap.String("path", cfg.ExportPath))
	}
	if cfg.MultiplierTablePath != "" {
		if err := scriptio.ExportMultiplierTable(cfg.MultiplierTablePath, report.MultiplierTable); err != nil {
			return err
		}
	}
	if cfg.MysteryTriggerPath != "" {
		if err := scriptio.ExportMysteryTrigger(cfg.MysteryTriggerPath, report.Economics.MysteryTrigger); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(w io.Writer, runID string, doc scriptio.ExportDocument) {
	s := doc.Summary
	fmt.Fprintln(w, "═══════════════════════════════════════════════")
	fmt.Fprintf(w, "回放任务: %s\n", runID)
	fmt.Fprintf(w, "脚本总数: %d (基础 %d / 免费 %d)\n", s.TotalScripts, s.BaseScripts, s.FreeScripts)
	fmt.Fprintln(w, "───────────────────────────────────────────────")
	printGame(w, "基础游戏", s.BaseGame)
	printGame(w, "免费游戏", s.FreeGame)
	if s.FreeGame.WeightedCalculatedPayout != nil {
		fmt.Fprintf(w, "  加权赔付(计算): %.6f\n", *s.FreeGame.WeightedCalculatedPayout)
	}
	fmt.Fprintln(w, "───────────────────────────────────────────────")
	fmt.Fprintf(w, "综合赔付 期望/计算: %.6f / %.6f\n", s.Combined.TotalExpectedPayout, s.Combined.TotalCalculatedPayout)
	fmt.Fprintf(w, "每次基础旋转平均: %.6f\n", s.Combined.AveragePerBaseGameSpin)
	fmt.Fprintf(w, "免费游戏期望局数: %.4f\n", s.Economics.ExpectedFGLength)
	fmt.Fprintf(w, "神秘触发概率: %.4f\n", s.Economics.MysteryTrigger)
	fmt.Fprintln(w, "───────────────────────────────────────────────")
	m := s.Mismatches
	fmt.Fprintf(w, "赔付不一致: %d  停止位置不一致: %d  连锁不一致: %d  出错: %d\n",
		m.PayoutMismatches, m.StopMismatches, m.CascadingMismatches, m.Failed)
	fmt.Fprintln(w, "═══════════════════════════════════════════════")
}

func printGame(w io.Writer, name string, g scriptio.GameSummary) {
	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "  总赔付 期望/计算: %.6f / %.6f\n", g.TotalExpectedPayout, g.TotalCalculatedPayout)
	fmt.Fprintf(w, "  平均赔付 期望/计算: %.6f / %.6f\n", g.AverageExpectedPayout, g.AverageCalculatedPayout)
	fmt.Fprintf(w, "  方差/标准差: %.6f / %.6f\n", g.CalculatedVariance, g.CalculatedStdDev)
	fmt.Fprintf(w, "  最后盘面为终止盘面: %d\n", g.TerminalLastBoard)
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("老虎机脚本回放工具\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
}
