package response

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"StreakKeeper/pkg/errors"
	"StreakKeeper/pkg/logger"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// StatusFor 根据错误码映射 HTTP 状态码，非业务错误按 500 处理
func StatusFor(err error) int {
	var def errors.Definition
	if !stderrors.As(err, &def) {
		return http.StatusInternalServerError
	}

	switch def.Code {
	case errors.CheckpointInvalid.Code, errors.InvalidRequest.Code:
		return http.StatusBadRequest
	case errors.StateNotFound.Code:
		return http.StatusNotFound
	case errors.StateConflict.Code, errors.StateLockTimeout.Code:
		return http.StatusConflict
	case errors.TooManyRequests.Code:
		return http.StatusTooManyRequests
	case errors.StoreUnavailable.Code, errors.ClockUnavailable.Code:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// detail 取出错误码和对外信息，内部错误不向调用方暴露原始信息
func detail(err error) (string, string) {
	var def errors.Definition
	if stderrors.As(err, &def) {
		return def.Code, def.Message
	}
	return errors.InternalServerError.Code, errors.InternalServerError.Message
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	ErrorWithDetails(ctx, c, err, nil)
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	statusCode := StatusFor(err)
	code, message := detail(err)

	if statusCode >= http.StatusInternalServerError {
		logger.Logger.Error("Request failed",
			zap.String("path", string(c.Path())),
			zap.String("code", code),
			zap.Error(err),
		)
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    errors.InvalidRequest.Code,
			Message: err.Error(),
		},
	})
}

// NoContent 返回 204 No Content
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
