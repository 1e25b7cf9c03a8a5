package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"StreakKeeper/internal/handler"
	"StreakKeeper/internal/middleware"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.RequestIDMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	h.GET("/healthz", handler.Healthz)

	v1 := h.Group("/v1")
	v1.Use(middleware.GeneralRateLimitMiddleware())
	{
		v1.POST("/check-ins", handler.CheckIn)
		v1.GET("/status", handler.GetStatus)
	}

	// 旧客户端使用的路径
	legacy := h.Group("/api")
	legacy.Use(middleware.GeneralRateLimitMiddleware())
	{
		legacy.POST("/checkin", handler.CheckIn)
		legacy.GET("/status", handler.GetStatus)
	}

	// CORS 预检，实际响应由 CORSMiddleware 写出
	for _, path := range []string{"/v1/check-ins", "/v1/status", "/api/checkin", "/api/status"} {
		h.OPTIONS(path, handler.Preflight)
	}
}
