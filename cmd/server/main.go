package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/slot-replay/internal/api"
	"github.com/wfunc/slot-replay/internal/config"
	"github.com/wfunc/slot-replay/internal/database"
	"github.com/wfunc/slot-replay/internal/errors"
	"github.com/wfunc/slot-replay/internal/logger"
	"github.com/wfunc/slot-replay/internal/service"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Server 服务器实例
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	db         *gorm.DB
	httpServer *http.Server
	errCh      chan error
}

func main() {
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	server := NewServer(cfg)
	if err := server.Start(); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}

	server.WaitForShutdown()

	if err := server.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("服务器已安全关闭")
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger.GetLogger(),
		errCh:  make(chan error, 1),
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("正在启动脚本回放服务...",
		zap.String("version", Version),
		zap.String("mode", s.cfg.Server.Mode),
		zap.String("variant", s.cfg.Replay.Variant),
	)

	if s.cfg.Replay.Persist {
		if err := s.initDatabase(); err != nil {
			return err
		}
	}

	services, err := service.NewServices(s.db, &s.cfg.Replay, logger.GetModuleLogger("replay"))
	if err != nil {
		return errors.Wrap(err, errors.ErrUnknown, "创建服务失败")
	}

	gin.SetMode(ginMode(s.cfg.Server.Mode))
	router := api.NewRouter(s.db, services, &s.cfg.Server, logger.GetModuleLogger("api"))

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.errCh <- err
		}
	}()

	// 监听配置变化，只有日志级别可在运行时生效
	config.Watch(func(newCfg *config.Config) {
		s.logger.Info("配置已更新，正在重新加载...")
		s.reloadConfig(newCfg)
	})

	s.logger.Info("服务器启动成功", zap.String("http", addr), zap.Bool("persist", s.cfg.Replay.Persist))
	return nil
}

// initDatabase 初始化数据库
func (s *Server) initDatabase() error {
	s.logger.Info("初始化数据库...")

	if err := database.Init(&s.cfg.Database); err != nil {
		return errors.Wrap(err, errors.ErrDatabaseConnect, "初始化数据库连接失败")
	}
	if s.cfg.Database.AutoMigrate {
		s.logger.Info("执行数据库自动迁移...")
		if err := database.AutoMigrate(); err != nil {
			return errors.Wrap(err, errors.ErrDatabaseMigration, "数据库迁移失败")
		}
	}
	if !database.IsConnected() {
		return errors.New(errors.ErrDatabaseConnect, "数据库连接检查失败")
	}

	s.db = database.GetDB()
	s.logger.Info("数据库初始化完成")
	return nil
}

// WaitForShutdown 等待关闭信号或HTTP服务异常退出
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case sig := <-sigCh:
		s.logger.Info("收到退出信号", zap.String("signal", sig.String()))
	case err := <-s.errCh:
		s.logger.Error("HTTP服务异常退出", zap.Error(err))
	}
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	s.logger.Info("正在优雅关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("关闭超时，强制退出", zap.Error(err))
			return errors.Wrap(err, errors.ErrTimeout, "关闭超时")
		}
	}

	if s.db != nil {
		if err := database.Close(); err != nil {
			s.logger.Error("关闭数据库失败", zap.Error(err))
		}
	}

	if err := logger.Sync(); err != nil {
		fmt.Printf("同步日志失败: %v\n", err)
	}
	return nil
}

// reloadConfig 重新加载配置
func (s *Server) reloadConfig(newCfg *config.Config) {
	logger.SetLevel(newCfg.Log.Level)
	s.logger.Info("配置重新加载完成", zap.String("log_level", newCfg.Log.Level))
}

func ginMode(mode string) string {
	switch mode {
	case "production", "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("老虎机脚本回放服务\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("老虎机脚本回放服务")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  slot-replay-server [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  SLOT_REPLAY_SERVER_PORT    监听端口")
	fmt.Println("  SLOT_REPLAY_REPLAY_PERSIST 回放结果写入数据库")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  slot-replay-server -config=/path/to/config.yaml")
	fmt.Println("  slot-replay-server -version")
}
