package api

import (
	"Profile_1.0/backend/go/internal/config"
	"Profile_1.0/backend/go/pkg/logger"
	"Profile_1.0/backend/go/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
)

// RouterOption 配置 SetupRouter 的可选项。
type RouterOption func(*routerOptions)

type routerOptions struct {
	limiter ratelimiter.RateLimiter
}

// WithRateLimiter 启用限流，limiter 为 nil 时不生效。
func WithRateLimiter(limiter ratelimiter.RateLimiter) RouterOption {
	return func(o *routerOptions) {
		o.limiter = limiter
	}
}

// SetupRouter 配置和返回一个 Gin 引擎实例。
func SetupRouter(h *Handler, cfg config.MiddlewareConfig, log *logger.Logger, opts ...RouterOption) *gin.Engine {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := gin.New()
	// 未匹配的方法与未匹配的路径一样返回 404
	r.HandleMethodNotAllowed = false
	// "/me/" 不重定向到 "/me"，交给 NoRoute
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(RequestID(), RequestLogger(log))
	if o.limiter != nil {
		r.Use(RateLimit(o.limiter))
	}
	r.Use(Recovery(log), CORS(cfg.CORS))

	r.GET("/", h.Index)
	r.HEAD("/", h.Index)
	r.GET("/me", h.GetProfile)
	r.HEAD("/me", h.GetProfile)

	r.NoRoute(h.NotFound)

	return r
}
