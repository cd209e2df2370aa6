// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	// 存储配置
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 脚本执行配置
	Exec *UserExecConfig `json:"exec,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty"`
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	DataRoot *string `json:"data_root,omitempty"` // 数据根目录（data_root）
	InMemory *bool   `json:"in_memory,omitempty"` // 是否使用内存数据库（测试/演示）

	MemTableSizeMB *int `json:"mem_table_size_mb,omitempty"` // 内存表大小（MB），不小于 8
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径
}

// UserExecConfig 用户脚本执行配置
type UserExecConfig struct {
	TimeoutMs        *int  `json:"timeout_ms,omitempty"`         // 单个 WASM 程序执行超时（毫秒）
	MemoryLimitPages *int  `json:"memory_limit_pages,omitempty"` // WASM 线性内存页数上限（每页 64KiB）
	CompileCache     *bool `json:"compile_cache,omitempty"`      // 是否缓存已编译的 WASM 模块
	MaxExecDepth     *int  `json:"max_exec_depth,omitempty"`     // 委托执行的最大嵌套层数
}

// UserAPIConfig 用户API配置
type UserAPIConfig struct {
	HTTPEnabled *bool   `json:"http_enabled,omitempty"` // 是否启用HTTP服务（默认true）
	HTTPHost    *string `json:"http_host,omitempty"`    // HTTP监听地址
	HTTPPort    *int    `json:"http_port,omitempty"`    // HTTP监听端口
	GinMode     *string `json:"gin_mode,omitempty"`     // gin 运行模式：debug | release | test

	ReadRateLimit  *int `json:"read_rate_limit,omitempty"`  // 每个客户端读请求QPS
	WriteRateLimit *int `json:"write_rate_limit,omitempty"` // 每个客户端写请求QPS
}

// StringPtr 返回字符串指针，便于构造用户配置
func StringPtr(v string) *string { return &v }

// IntPtr 返回整数指针
func IntPtr(v int) *int { return &v }

// BoolPtr 返回布尔指针
func BoolPtr(v bool) *bool { return &v }
