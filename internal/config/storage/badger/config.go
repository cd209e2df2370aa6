package badger

import (
	"path/filepath"

	configtypes "github.com/weisyn/rangeregistry/pkg/types"
)

// BadgerOptions BadgerDB存储配置选项
type BadgerOptions struct {
	// === 基础配置 ===
	Path       string `json:"path"`        // 数据库存储路径
	InMemory   bool   `json:"in_memory"`   // 是否使用内存模式（数据不落盘）
	SyncWrites bool   `json:"sync_writes"` // 是否同步写入

	// === 基础性能配置 ===
	MemTableSize int64 `json:"mem_table_size"` // 内存表大小
}

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建BadgerDB配置实现
func New(userConfig interface{}) *Config {
	defaultOptions := createDefaultBadgerOptions()

	if userConfig != nil {
		applyUserConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// NewFromOptions 从BadgerOptions创建配置实现
func NewFromOptions(options *BadgerOptions) *Config {
	return &Config{
		options: options,
	}
}

// createDefaultBadgerOptions 创建默认BadgerDB配置
func createDefaultBadgerOptions() *BadgerOptions {
	return &BadgerOptions{
		Path:         getDefaultPath(),
		InMemory:     defaultInMemory,
		SyncWrites:   defaultSyncWrites,
		MemTableSize: defaultMemTableSize,
	}
}

// applyUserConfig 应用用户配置覆盖默认值
//
// 配置了 storage.data_root 时使用 {data_root}/badger/。
func applyUserConfig(options *BadgerOptions, userConfig interface{}) {
	storageConfig, ok := userConfig.(*configtypes.UserStorageConfig)
	if !ok || storageConfig == nil {
		return
	}
	if storageConfig.DataRoot != nil {
		options.Path = resolvePath(filepath.Join(*storageConfig.DataRoot, "badger"))
	}
	if storageConfig.InMemory != nil {
		options.InMemory = *storageConfig.InMemory
	}
	if storageConfig.MemTableSizeMB != nil {
		options.MemTableSize = int64(*storageConfig.MemTableSizeMB) << 20
	}
}

// GetOptions 获取完整的BadgerDB配置选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}

// GetPath 获取数据库路径
func (c *Config) GetPath() string {
	return c.options.Path
}

// IsInMemory 是否为内存模式
func (c *Config) IsInMemory() bool {
	return c.options.InMemory
}

// IsSyncWritesEnabled 是否启用同步写入
func (c *Config) IsSyncWritesEnabled() bool {
	return c.options.SyncWrites
}

// GetMemTableSize 获取内存表大小
func (c *Config) GetMemTableSize() int64 {
	return c.options.MemTableSize
}

func resolvePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
