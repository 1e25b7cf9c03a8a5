package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"StreakKeeper/internal/model/dto"
	"StreakKeeper/internal/service"
	"StreakKeeper/pkg/response"
)

// CheckIn 完成一个打卡点
// POST /v1/check-ins
func CheckIn(ctx context.Context, c *app.RequestContext) {
	var req dto.CheckInRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.CheckIn().Process(ctx, req.Checkpoint)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetStatus 只读状态查询，不会触发跨日结算
// GET /v1/status
func GetStatus(ctx context.Context, c *app.RequestContext) {
	result, err := service.CheckIn().Status(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// Healthz GET /healthz
func Healthz(ctx context.Context, c *app.RequestContext) {
	if err := service.CheckIn().Health(ctx); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]string{"status": "ok"})
}

// Preflight OPTIONS 兜底
func Preflight(ctx context.Context, c *app.RequestContext) {
	response.NoContent(ctx, c)
}
