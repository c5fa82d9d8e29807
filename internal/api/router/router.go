package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shift-swap/backend/config"
	"shift-swap/backend/internal/api/handler"
	"shift-swap/backend/internal/api/middleware"
	"shift-swap/backend/pkg/jwt"
	"shift-swap/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录按 IP 限速）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 班次模块
			shifts := authorized.Group("/shifts")
			{
				shifts.POST("", h.Shift.CreateShift)
				shifts.GET("", h.Shift.ListShifts)
				shifts.DELETE("/:id", h.Shift.DeleteShift)
			}

			// 换班请求模块
			swapRequests := authorized.Group("/swap-requests")
			{
				swapRequests.POST("", h.Swap.CreateSwapRequest)
				swapRequests.GET("", h.Swap.ListSwapRequests)
				swapRequests.GET("/mine", h.Swap.ListMySwapRequests)
				swapRequests.DELETE("/:id", h.Swap.DeleteSwapRequest)
				swapRequests.GET("/:id/eligible-shifts", h.Shift.ListEligibleShifts)
			}

			// 意向模块
			interests := authorized.Group("/interests")
			{
				interests.POST("", h.Swap.ExpressInterest)
				interests.DELETE("", h.Swap.WithdrawInterest)
			}

			// 过期清理（手动触发）
			authorized.POST("/cleanup", h.Swap.Cleanup)

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/shifts", h.Export.ExportShifts)
				export.GET("/shifts.ics", h.Export.ExportShiftsICS)
			}
		}
	}

	return r
}
