package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 默认值，与原始部署保持一致。
const (
	DefaultPort         = 3000
	DefaultFactAPIURL   = "https://catfact.ninja/fact"
	DefaultFactTimeout  = "5s"
	DefaultFallbackFact = "Cats are amazing creatures!"
)

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// ServerConfig 定义了 HTTP 服务的监听与超时配置。
type ServerConfig struct {
	Port            int    `yaml:"port"`            // 监听端口
	ReadTimeout     string `yaml:"readTimeout"`     // 例如: "10s"
	WriteTimeout    string `yaml:"writeTimeout"`    // 例如: "15s"
	ShutdownTimeout string `yaml:"shutdownTimeout"` // 优雅关闭的最长等待时间
}

// Addr 返回 http.Server 使用的监听地址。
func (s ServerConfig) Addr() string {
	return ":" + strconv.Itoa(s.Port)
}

// ReadTimeoutDuration 返回解析后的读超时。
func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return mustDuration(s.ReadTimeout, 10*time.Second)
}

// WriteTimeoutDuration 返回解析后的写超时。
func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return mustDuration(s.WriteTimeout, 15*time.Second)
}

// ShutdownTimeoutDuration 返回解析后的关闭超时。
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(s.ShutdownTimeout, 5*time.Second)
}

// ProfileConfig 是对外展示的静态用户资料。
type ProfileConfig struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
	Stack string `yaml:"stack"`
}

// FactAPIConfig 定义了外部猫咪知识接口的配置。
type FactAPIConfig struct {
	URL      string `yaml:"url"`      // 接口地址
	Timeout  string `yaml:"timeout"`  // 单次请求的超时, 例如: "5s"
	Fallback string `yaml:"fallback"` // 请求失败时返回的固定文本
}

// TimeoutDuration 返回解析后的请求超时。
func (f FactAPIConfig) TimeoutDuration() time.Duration {
	return mustDuration(f.Timeout, 5*time.Second)
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	CORS        CORSConfig        `yaml:"cors"`
	RateLimiter RateLimiterConfig `yaml:"rateLimiter"`
}

// CORSConfig 定义了跨域访问的配置。
type CORSConfig struct {
	AllowOrigins []string `yaml:"allowOrigins"` // "*" 表示允许所有来源
}

// RateLimiterConfig 定义了限流器的配置。
type RateLimiterConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Algorithm   string            `yaml:"algorithm"` // 支持: "tokenBucket", "fixedWindow"
	TokenBucket TokenBucketConfig `yaml:"tokenBucket"`
	FixedWindow FixedWindowConfig `yaml:"fixedWindow"`
}

// TokenBucketConfig 定义了令牌桶算法的配置。
type TokenBucketConfig struct {
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// FixedWindowConfig 定义了固定窗口计数器算法的配置。
type FixedWindowConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"` // 例如: "1m", "30s"
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
// 进程启动时构建一次，之后只读。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Profile    ProfileConfig    `yaml:"profile"`
	FactAPI    FactAPIConfig    `yaml:"factApi"`
	Logger     LoggerConfig     `yaml:"logger"`
	Middleware MiddlewareConfig `yaml:"middleware"`
}

// Default 返回不依赖任何配置文件或环境变量的默认配置。
func Default() *AppConfig {
	return &AppConfig{
		App: AppInfo{
			Name:        "profile_service",
			Version:     "1.0.0",
			Environment: "development",
		},
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     "10s",
			WriteTimeout:    "15s",
			ShutdownTimeout: "5s",
		},
		Profile: ProfileConfig{
			Email: "belloibrahimolawale@gmail.com",
			Name:  "Ibraheem Bello",
			Stack: "Go/Gin",
		},
		FactAPI: FactAPIConfig{
			URL:      DefaultFactAPIURL,
			Timeout:  DefaultFactTimeout,
			Fallback: DefaultFallbackFact,
		},
		Logger: LoggerConfig{Level: "info"},
		Middleware: MiddlewareConfig{
			CORS: CORSConfig{AllowOrigins: []string{"*"}},
			RateLimiter: RateLimiterConfig{
				Enabled:     false,
				Algorithm:   "tokenBucket",
				TokenBucket: TokenBucketConfig{Rate: 50, Capacity: 100},
				FixedWindow: FixedWindowConfig{Limit: 600, Window: "1m"},
			},
		},
	}
}

// LoadEnvFile 把 .env 文件中的变量加载到进程环境中，已存在的环境变量不会被覆盖。
// 文件不存在时直接返回 nil。
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("无法加载 env 文件 '%s': %w", path, err)
	}
	return nil
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件，然后应用环境变量覆盖。
//
// 参数:
//
//	path: YAML 配置文件的路径。为空或文件不存在时仅使用默认值。
//
// 返回值:
//
//	*AppConfig: 解析并校验后的应用程序配置结构体。
//	error: 如果文件读取、解析或校验失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		yamlFile, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// 没有配置文件时使用默认值
		case err != nil:
			return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
		default:
			if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
				return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
			}
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv 使用环境变量覆盖配置项。
func applyEnv(cfg *AppConfig, lookup func(string) (string, bool)) error {
	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	setString("USER_EMAIL", &cfg.Profile.Email)
	setString("USER_NAME", &cfg.Profile.Name)
	setString("USER_STACK", &cfg.Profile.Stack)
	setString("FACT_API_URL", &cfg.FactAPI.URL)
	setString("LOG_LEVEL", &cfg.Logger.Level)
	setString("APP_ENV", &cfg.App.Environment)

	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}

	if v, ok := lookup("FACT_API_TIMEOUT"); ok && strings.TrimSpace(v) != "" {
		v = strings.TrimSpace(v)
		// 纯数字按毫秒处理
		if ms, err := strconv.Atoi(v); err == nil {
			v = (time.Duration(ms) * time.Millisecond).String()
		}
		cfg.FactAPI.Timeout = v
	}
	return nil
}

// Validate 校验配置是否可用。
func (c *AppConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	for name, value := range map[string]string{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.writeTimeout":    c.Server.WriteTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"factApi.timeout":        c.FactAPI.Timeout,
	} {
		if _, err := parsePositiveDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	u, err := url.Parse(c.FactAPI.URL)
	if err != nil {
		return fmt.Errorf("invalid factApi.url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid factApi.url %q: must be an absolute http(s) URL", c.FactAPI.URL)
	}
	if c.FactAPI.Fallback == "" {
		return errors.New("factApi.fallback must not be empty")
	}

	for _, origin := range c.Middleware.CORS.AllowOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid cors origin %q", origin)
		}
	}

	rl := c.Middleware.RateLimiter
	if rl.Enabled {
		switch rl.Algorithm {
		case "", "tokenBucket":
			if rl.TokenBucket.Rate <= 0 || rl.TokenBucket.Capacity <= 0 {
				return errors.New("tokenBucket rate and capacity must be positive")
			}
		case "fixedWindow":
			if rl.FixedWindow.Limit <= 0 {
				return errors.New("fixedWindow limit must be positive")
			}
			if _, err := parsePositiveDuration(rl.FixedWindow.Window); err != nil {
				return fmt.Errorf("invalid fixedWindow window: %w", err)
			}
		default:
			return fmt.Errorf("unknown rate limiter algorithm: %s", rl.Algorithm)
		}
	}
	return nil
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}

func mustDuration(s string, def time.Duration) time.Duration {
	d, err := parsePositiveDuration(s)
	if err != nil {
		return def
	}
	return d
}
