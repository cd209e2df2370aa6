package api

import "time"

// API服务默认配置值
const (
	defaultHTTPEnabled = true
	defaultHTTPHost    = "127.0.0.1"
	defaultHTTPPort    = 28680

	// defaultGinMode 生产默认使用 release，避免 gin 调试输出混入日志
	defaultGinMode = "release"

	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second

	// defaultMaxRequestSize 单个交易 JSON 的上限
	defaultMaxRequestSize = 4 << 20

	defaultReadRateLimit  = 200
	defaultWriteRateLimit = 50
)
