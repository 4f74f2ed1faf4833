package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wfunc/slot-replay/internal/config"
	"github.com/wfunc/slot-replay/internal/database"
	"github.com/wfunc/slot-replay/internal/middleware"
	"github.com/wfunc/slot-replay/internal/service"
)

// Router API路由器
type Router struct {
	engine        *gin.Engine
	db            *gorm.DB
	services      *service.Services
	replayHandler *ReplayHandler
	log           *zap.Logger
}

// NewRouter 创建路由器，db为nil时不做数据库健康检查
func NewRouter(db *gorm.DB, services *service.Services, cfg *config.ServerConfig, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.AccessLog())

	router := &Router{
		engine:        engine,
		db:            db,
		services:      services,
		replayHandler: NewReplayHandler(services.Replay, cfg.MaxUploadSize, log),
		log:           log,
	}

	router.setupRoutes()
	registerOpenAPIRoutes(engine)
	if cfg.EnableSwagger {
		registerSwaggerRoutes(engine)
	}

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.healthCheck)

	v1 := r.engine.Group("/api/v1")
	{
		boards := v1.Group("/boards")
		{
			boards.POST("/validate", r.replayHandler.ValidateBoard)
			boards.POST("/step", r.replayHandler.StepBoard)
		}

		replays := v1.Group("/replays")
		{
			replays.POST("", r.replayHandler.CreateReplay)
			replays.GET("", r.replayHandler.ListReplays)
			replays.GET("/:run_id", r.replayHandler.GetReplay)
			replays.DELETE("/:run_id", r.replayHandler.DeleteReplay)
			replays.GET("/:run_id/scripts", r.replayHandler.ListScripts)
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	dbStatus := "disabled"
	if r.db != nil {
		if err := database.Ping(r.db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "down",
				"message":  "数据库ping失败",
			})
			return
		}
		dbStatus = "up"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"database":   dbStatus,
		"persistent": r.services.Replay.Persistent(),
		"message":    "服务运行正常",
	})
}

// Handler 返回http.Handler，供http.Server使用
func (r *Router) Handler() http.Handler {
	return r.engine
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
