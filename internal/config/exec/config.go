// Package exec 提供脚本执行（原生程序与 WASM 沙箱）配置
package exec

import (
	"time"

	"github.com/weisyn/rangeregistry/pkg/types"
)

// ExecOptions 脚本执行配置选项
type ExecOptions struct {
	Timeout          time.Duration `json:"timeout"`            // 单个 WASM 程序执行超时
	MemoryLimitPages uint32        `json:"memory_limit_pages"` // WASM 线性内存页数上限
	CompileCache     bool          `json:"compile_cache"`      // 是否缓存编译结果
	MaxExecDepth     int           `json:"max_exec_depth"`     // 委托执行最大嵌套层数
}

// Config 脚本执行配置实现
type Config struct {
	options *ExecOptions
}

// New 创建脚本执行配置
func New(userConfig interface{}) *Config {
	options := &ExecOptions{
		Timeout:          defaultTimeout,
		MemoryLimitPages: defaultMemoryLimitPages,
		CompileCache:     defaultCompileCache,
		MaxExecDepth:     defaultMaxExecDepth,
	}
	if cfg, ok := userConfig.(*types.UserExecConfig); ok && cfg != nil {
		if cfg.TimeoutMs != nil && *cfg.TimeoutMs > 0 {
			options.Timeout = time.Duration(*cfg.TimeoutMs) * time.Millisecond
		}
		if cfg.MemoryLimitPages != nil && *cfg.MemoryLimitPages > 0 {
			options.MemoryLimitPages = uint32(*cfg.MemoryLimitPages)
		}
		if cfg.CompileCache != nil {
			options.CompileCache = *cfg.CompileCache
		}
		if cfg.MaxExecDepth != nil && *cfg.MaxExecDepth > 0 {
			options.MaxExecDepth = *cfg.MaxExecDepth
		}
	}
	return &Config{options: options}
}

// NewFromOptions 从完整选项创建
func NewFromOptions(options *ExecOptions) *Config {
	return &Config{options: options}
}

// GetOptions 获取完整配置
func (c *Config) GetOptions() *ExecOptions {
	return c.options
}

// GetTimeout 单个 WASM 程序执行超时
func (c *Config) GetTimeout() time.Duration {
	return c.options.Timeout
}

// GetMemoryLimitPages WASM 内存页数上限
func (c *Config) GetMemoryLimitPages() uint32 {
	return c.options.MemoryLimitPages
}

// IsCompileCacheEnabled 是否缓存编译结果
func (c *Config) IsCompileCacheEnabled() bool {
	return c.options.CompileCache
}

// GetMaxExecDepth 委托执行最大嵌套层数
func (c *Config) GetMaxExecDepth() int {
	return c.options.MaxExecDepth
}
