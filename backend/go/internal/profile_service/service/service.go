package service

import (
	"context"
	"time"

	"Profile_1.0/backend/go/internal/catfact"
	"Profile_1.0/backend/go/internal/config"
	"Profile_1.0/backend/go/internal/models"
)

// TimestampLayout 是 ISO-8601 UTC 毫秒精度格式, 例如 2024-01-15T10:30:00.123Z。
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FactProvider 提供一条猫咪知识，实现方不得返回错误。
type FactProvider interface {
	Fetch(ctx context.Context) catfact.Result
}

// Assembler 为每个请求组装 ProfileResponse。
type Assembler struct {
	profile models.Profile
	facts   FactProvider
	now     func() time.Time
}

// AssemblerOption 定义了配置 Assembler 的函数。
type AssemblerOption func(*Assembler)

// WithClock 替换时间来源（测试中使用）。
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) {
		a.now = now
	}
}

// NewAssembler 创建一个新的 Assembler 实例。
func NewAssembler(profile models.Profile, facts FactProvider, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		profile: profile,
		facts:   facts,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProfileFromConfig 把配置中的资料转换为对外模型。
func ProfileFromConfig(cfg config.ProfileConfig) models.Profile {
	return models.Profile{
		Email: cfg.Email,
		Name:  cfg.Name,
		Stack: cfg.Stack,
	}
}

// BuildResponse 先获取猫咪知识，再记录当前时间并组装响应。
// 时间戳在每次调用时重新计算。
func (a *Assembler) BuildResponse(ctx context.Context) models.ProfileResponse {
	resp, _ := a.Build(ctx)
	return resp
}

// Build 与 BuildResponse 相同，同时返回知识获取的详细结果。
func (a *Assembler) Build(ctx context.Context) (models.ProfileResponse, catfact.Result) {
	fact := a.facts.Fetch(ctx)

	return models.ProfileResponse{
		Status:    models.StatusSuccess,
		User:      a.profile,
		Timestamp: FormatTimestamp(a.now()),
		Fact:      fact.Fact,
	}, fact
}

// FormatTimestamp 把时间格式化为 UTC 毫秒精度的 ISO-8601 字符串。
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
