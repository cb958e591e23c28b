package api

import (
	"context"
	"encoding/json"
	"net/http"

	"Profile_1.0/backend/go/internal/catfact"
	"Profile_1.0/backend/go/internal/models"
	"Profile_1.0/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// 对外暴露的固定错误信息，不包含任何内部细节。
const (
	msgNotFound       = "Endpoint not found"
	msgInternal       = "Internal server error"
	msgProfileFailure = "Failed to generate profile response"
	msgTooMany        = "Too many requests"
)

// ProfileBuilder 为每个请求组装资料响应。
type ProfileBuilder interface {
	Build(ctx context.Context) (models.ProfileResponse, catfact.Result)
}

// Handler 封装了所有 API endpoint 的处理函数。
type Handler struct {
	builder ProfileBuilder
	logger  *logger.Logger
	marshal func(v interface{}) ([]byte, error)
}

// HandlerOption 定义了配置 Handler 的函数。
type HandlerOption func(*Handler)

// WithMarshaler 替换响应的序列化函数（测试中使用）。
func WithMarshaler(marshal func(v interface{}) ([]byte, error)) HandlerOption {
	return func(h *Handler) {
		h.marshal = marshal
	}
}

// NewHandler 创建一个新的 Handler 实例。
func NewHandler(b ProfileBuilder, log *logger.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		builder: b,
		logger:  log,
		marshal: json.Marshal,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetProfile 处理 GET /me 请求。
func (h *Handler) GetProfile(c *gin.Context) {
	log := requestLogger(c, h.logger)
	log.Debug("Processing /me request")

	resp, fact := h.builder.Build(c.Request.Context())

	body, err := h.marshal(resp)
	if err != nil {
		log.WithError(models.ErrorInfo{
			Message:    err.Error(),
			Type:       "serialization_error",
			StatusCode: http.StatusInternalServerError,
		}).Error("Failed to serialize profile response")
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(msgProfileFailure))
		return
	}

	log.WithField("fact_source", fact.Source.String()).Debug("Response prepared successfully")
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// Index 返回服务的基本信息。
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "API is running",
		"endpoints": gin.H{
			"profile": "/me",
		},
	})
}

// NotFound 处理所有未匹配的路由。
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.NewErrorResponse(msgNotFound))
}
