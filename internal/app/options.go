package app

import (
	"github.com/weisyn/rangeregistry/pkg/interfaces/config"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项
// 实现config.AppOptions接口
type options struct {
	// 配置文件路径
	configFilePath string

	// 嵌入的配置内容（优先级高于configFilePath）
	embeddedConfig []byte

	// 用户配置
	appConfig *types.AppConfig

	// 在文件配置之上叠加的覆盖项
	overrides []func(*types.AppConfig)

	// API支持开关 (默认启用)
	enableAPI bool

	// 静默模式：不输出启动过程信息
	quiet bool
}

// 编译时校验options是否实现了config.AppOptions接口
var _ config.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithEmbeddedConfig 设置嵌入的配置内容（优先级高于WithConfigFile）
func WithEmbeddedConfig(configBytes []byte) Option {
	return func(o *options) {
		o.embeddedConfig = configBytes
	}
}

// WithAppConfig 直接指定应用配置（优先级最高，不再读取文件）
func WithAppConfig(appConfig *types.AppConfig) Option {
	return func(o *options) {
		o.appConfig = appConfig
	}
}

// WithInMemoryStore 使用内存存储（离线验证、测试）
func WithInMemoryStore() Option {
	return func(o *options) {
		o.overrides = append(o.overrides, func(c *types.AppConfig) {
			if c.Storage == nil {
				c.Storage = &types.UserStorageConfig{}
			}
			c.Storage.InMemory = types.BoolPtr(true)
		})
	}
}

// WithAPI 启用API模块
func WithAPI() Option {
	return func(o *options) {
		o.enableAPI = true
	}
}

// WithoutAPI 禁用API模块
func WithoutAPI() Option {
	return func(o *options) {
		o.enableAPI = false
	}
}

// WithQuiet 关闭启动过程输出
func WithQuiet() Option {
	return func(o *options) {
		o.quiet = true
	}
}

// newOptions 创建选项
func newOptions(opts ...Option) *options {
	options := &options{
		// API默认启用
		enableAPI: true,
	}

	// 应用自定义选项
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// GetAppConfig 返回应用程序配置
// 实现config.AppOptions接口
func (o *options) GetAppConfig() *types.AppConfig {
	if o.appConfig == nil {
		o.appConfig = &types.AppConfig{}
	}
	return o.appConfig
}
