package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wfunc/slot-replay/internal/errors"
	"github.com/wfunc/slot-replay/internal/game/slot"
	"github.com/wfunc/slot-replay/internal/logger"
	"github.com/wfunc/slot-replay/internal/middleware"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	*errors.ErrorResponse
	Violation *slot.BoardValidationError `json:"violation,omitempty"`
}

// PageResponse 分页响应
type PageResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// respondError 按错误类型写出响应
// 盘面结构错误返回422，AppError按错误码映射，其余为500
func respondError(c *gin.Context, err error) {
	requestID, _ := middleware.GetRequestID(c)

	var verr *slot.BoardValidationError
	if stderrors.As(err, &verr) {
		appErr := errors.New(errors.ErrInvalidBoard, verr.Message)
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			ErrorResponse: errors.NewErrorResponse(publicError(appErr), requestID),
			Violation:     verr,
		})
		return
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.Wrap(err, errors.ErrUnknown)
	}
	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.GetModuleLogger("api").Error("request_failed", loggerFields(c, requestID, appErr)...)
	}
	c.JSON(status, ErrorResponse{
		ErrorResponse: errors.NewErrorResponse(publicError(appErr), requestID),
	})
}

// publicError 去掉调用栈后返回给客户端
func publicError(e *errors.AppError) *errors.AppError {
	out := *e
	out.Stack = nil
	return &out
}

// badRequest 参数错误
func badRequest(c *gin.Context, err error) {
	respondError(c, errors.Wrap(err, errors.ErrInvalidParam))
}

func loggerFields(c *gin.Context, requestID string, e *errors.AppError) []zap.Field {
	return []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.Int("code", int(e.Code)),
		zap.Error(e),
		zap.String("stack", e.GetStack()),
	}
}
