package api

import (
	"fmt"
	"net/http"
	"time"

	"Profile_1.0/backend/go/internal/config"
	"Profile_1.0/backend/go/internal/models"
	"Profile_1.0/backend/go/pkg/logger"
	"Profile_1.0/backend/go/pkg/ratelimiter"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader 是请求追踪 ID 的请求/响应头。
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
	maxRequestIDLen = 128
)

// RequestID 为每个请求分配追踪 ID。客户端传入的 ID 会被沿用。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger 在请求结束后记录一条结构化访问日志。
func RequestLogger(base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := requestLogger(c, base).WithRequest(models.RequestInfo{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			RemoteAddr: c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			Status:     status,
			LatencyMs:  time.Since(start).Milliseconds(),
		})

		msg := fmt.Sprintf("%s %s %d", c.Request.Method, c.Request.URL.Path, status)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error(msg)
		case status >= http.StatusBadRequest:
			entry.Warn(msg)
		default:
			entry.Info(msg)
		}
	}
}

// Recovery 捕获处理函数中的 panic，记录日志并返回通用的 500 响应。
func Recovery(base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				requestLogger(c, base).WithError(models.ErrorInfo{
					Message:    fmt.Sprint(rec),
					Type:       "panic",
					StatusCode: http.StatusInternalServerError,
				}).Error("Unhandled error while serving request")
				c.AbortWithStatusJSON(http.StatusInternalServerError, models.NewErrorResponse(msgInternal))
			}
		}()
		c.Next()
	}
}

// RateLimit 在限流器拒绝请求时返回 429 错误响应。
// 放在 RequestID 与 RequestLogger 之后，被拒绝的请求同样带有追踪 ID 并记录访问日志。
func RateLimit(limiter ratelimiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.NewErrorResponse(msgTooMany))
			return
		}
		c.Next()
	}
}

// CORS 根据配置创建跨域中间件。
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	allowAll := len(cfg.AllowOrigins) == 0
	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	return cors.New(corsCfg)
}

// requestLogger 返回带有当前请求追踪 ID 的 Logger。
func requestLogger(c *gin.Context, base *logger.Logger) *logger.Logger {
	if id := c.GetString(requestIDKey); id != "" {
		return base.WithTraceID(id)
	}
	return base
}
