package api

import (
	"time"

	"github.com/weisyn/rangeregistry/pkg/types"
)

// APIOptions API服务配置选项
type APIOptions struct {
	// HTTP API配置
	HTTP HTTPConfig `json:"http"`
}

// HTTPConfig HTTP API配置
type HTTPConfig struct {
	// 基础配置
	Enabled bool   `json:"enabled"` // 是否启用HTTP服务
	Host    string `json:"host"`    // 监听地址
	Port    int    `json:"port"`    // 监听端口
	GinMode string `json:"gin_mode"`

	// 超时配置
	ReadTimeout     time.Duration `json:"read_timeout"`     // 读取超时时间
	WriteTimeout    time.Duration `json:"write_timeout"`    // 写入超时时间
	ShutdownTimeout time.Duration `json:"shutdown_timeout"` // 优雅关闭等待时间

	// 限制
	MaxRequestSize int64 `json:"max_request_size"` // 最大请求体大小(字节)
	ReadRateLimit  int   `json:"read_rate_limit"`  // 每个客户端读请求QPS，<=0 不限
	WriteRateLimit int   `json:"write_rate_limit"` // 每个客户端写请求QPS，<=0 不限
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置实现
func New(userConfig interface{}) *Config {
	options := createDefaultAPIOptions()
	if userConfig != nil {
		applyUserAPIConfig(options, userConfig)
	}
	return &Config{options: options}
}

func createDefaultAPIOptions() *APIOptions {
	return &APIOptions{
		HTTP: HTTPConfig{
			Enabled:         defaultHTTPEnabled,
			Host:            defaultHTTPHost,
			Port:            defaultHTTPPort,
			GinMode:         defaultGinMode,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			MaxRequestSize:  defaultMaxRequestSize,
			ReadRateLimit:   defaultReadRateLimit,
			WriteRateLimit:  defaultWriteRateLimit,
		},
	}
}

// applyUserAPIConfig 只覆盖配置文件中出现的字段
func applyUserAPIConfig(options *APIOptions, userConfig interface{}) {
	cfg, ok := userConfig.(*types.UserAPIConfig)
	if !ok || cfg == nil {
		return
	}
	if cfg.HTTPEnabled != nil {
		options.HTTP.Enabled = *cfg.HTTPEnabled
	}
	if cfg.HTTPHost != nil {
		options.HTTP.Host = *cfg.HTTPHost
	}
	if cfg.HTTPPort != nil {
		options.HTTP.Port = *cfg.HTTPPort
	}
	if cfg.GinMode != nil {
		options.HTTP.GinMode = *cfg.GinMode
	}
	if cfg.ReadRateLimit != nil {
		options.HTTP.ReadRateLimit = *cfg.ReadRateLimit
	}
	if cfg.WriteRateLimit != nil {
		options.HTTP.WriteRateLimit = *cfg.WriteRateLimit
	}
}

// GetOptions 获取完整配置
func (c *Config) GetOptions() *APIOptions {
	return c.options
}
