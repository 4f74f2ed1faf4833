package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wfunc/slot-replay/internal/models"
	"github.com/wfunc/slot-replay/internal/replay"
	"github.com/wfunc/slot-replay/internal/scriptio"
	"github.com/wfunc/slot-replay/internal/service"
)

// ReplayHandler 脚本回放处理器
type ReplayHandler struct {
	replayService service.ReplayService
	maxUpload     int64
	logger        *zap.Logger
}

// NewReplayHandler 创建回放处理器
func NewReplayHandler(replayService service.ReplayService, maxUpload int64, logger *zap.Logger) *ReplayHandler {
	return &ReplayHandler{
		replayService: replayService,
		maxUpload:     maxUpload,
		logger:        logger,
	}
}

// ValidateResponse 盘面校验响应
type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// CreateReplayResponse 回放响应
type CreateReplayResponse struct {
	RunID       string                 `json:"run_id"`
	Persisted   bool                   `json:"persisted"`
	Summary     scriptio.ExportSummary `json:"summary"`
	BaseScripts []replay.ScriptResult  `json:"baseScripts,omitempty"`
	FreeScripts []replay.ScriptResult  `json:"freeScripts,omitempty"`
}

// ValidateBoard 校验盘面
// @Summary 校验盘面结构
// @Tags Board
// @Accept json
// @Produce json
// @Param request body service.BoardRequest true "盘面"
// @Success 200 {object} ValidateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/boards/validate [post]
func (h *ReplayHandler) ValidateBoard(c *gin.Context) {
	var req service.BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.replayService.ValidateBoard(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ValidateResponse{Valid: true})
}

// StepBoard 单步消除
// @Summary 对盘面执行一次消除下落
// @Tags Board
// @Accept json
// @Produce json
// @Param request body service.BoardRequest true "盘面"
// @Success 200 {object} service.StepResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/boards/step [post]
func (h *ReplayHandler) StepBoard(c *gin.Context) {
	var req service.BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.replayService.StepBoard(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateReplay 上传脚本文件并回放
// @Summary 回放脚本文件
// @Description 请求体为脚本JSON（可带result外层）；scripts=true时返回每个脚本的比对结果
// @Tags Replay
// @Accept json
// @Produce json
// @Param source query string false "脚本来源名称"
// @Param scripts query bool false "是否返回脚本明细"
// @Success 200 {object} CreateReplayResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/replays [post]
func (h *ReplayHandler) CreateReplay(c *gin.Context) {
	body := c.Request.Body
	if h.maxUpload > 0 {
		body = http.MaxBytesReader(c.Writer, body, h.maxUpload)
	}
	set, err := scriptio.Read(body)
	if err != nil {
		respondError(c, err)
		return
	}

	source := c.DefaultQuery("source", "upload")
	result, err := h.replayService.RunScripts(c.Request.Context(), source, set)
	if err != nil {
		respondError(c, err)
		return
	}

	doc := scriptio.BuildDocument(result.Report)
	resp := CreateReplayResponse{
		RunID:     result.RunID,
		Persisted: result.Run != nil,
		Summary:   doc.Summary,
	}
	if queryBool(c, "scripts") {
		resp.BaseScripts = doc.BaseScripts
		resp.FreeScripts = doc.FreeScripts
	}

	h.logger.Info("脚本回放完成",
		zap.String("run_id", result.RunID),
		zap.String("source", source),
		zap.Int("scripts", doc.Summary.TotalScripts))
	c.JSON(http.StatusOK, resp)
}

// ListReplays 回放任务列表
// @Summary 回放任务列表
// @Tags Replay
// @Produce json
// @Param variant query string false "规则变体"
// @Param status query string false "任务状态"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} PageResponse
// @Failure 501 {object} ErrorResponse
// @Router /api/v1/replays [get]
func (h *ReplayHandler) ListReplays(c *gin.Context) {
	q := models.ReplayRunQuery{
		Variant: c.Query("variant"),
		Status:  models.ReplayRunStatus(c.Query("status")),
	}
	runs, p, err := h.replayService.ListRuns(c.Request.Context(), q, queryInt(c, "page"), queryInt(c, "page_size"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PageResponse{Items: runs, Total: p.Total, Page: p.Page, PageSize: p.PageSize})
}

// GetReplay 回放任务详情
// @Summary 回放任务详情
// @Tags Replay
// @Produce json
// @Param run_id path string true "任务ID"
// @Success 200 {object} models.ReplayRun
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/replays/{run_id} [get]
func (h *ReplayHandler) GetReplay(c *gin.Context) {
	run, err := h.replayService.GetRun(c.Request.Context(), c.Param("run_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// DeleteReplay 删除回放任务
// @Summary 删除回放任务及脚本记录
// @Tags Replay
// @Param run_id path string true "任务ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/replays/{run_id} [delete]
func (h *ReplayHandler) DeleteReplay(c *gin.Context) {
	if err := h.replayService.DeleteRun(c.Request.Context(), c.Param("run_id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListScripts 回放任务的脚本记录
// @Summary 脚本比对记录
// @Tags Replay
// @Produce json
// @Param run_id path string true "任务ID"
// @Param game_type query string false "base | free"
// @Param mismatch query bool false "只返回不一致的脚本"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} PageResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/replays/{run_id}/scripts [get]
func (h *ReplayHandler) ListScripts(c *gin.Context) {
	q := models.ScriptRecordQuery{
		RunID:        c.Param("run_id"),
		GameType:     c.Query("game_type"),
		MismatchOnly: queryBool(c, "mismatch"),
	}
	records, p, err := h.replayService.ListScripts(c.Request.Context(), q, queryInt(c, "page"), queryInt(c, "page_size"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PageResponse{Items: records, Total: p.Total, Page: p.Page, PageSize: p.PageSize})
}

// queryInt 非法或缺省时返回0，由分页参数取默认值
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func queryBool(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(c.Query(key))
	return b
}
