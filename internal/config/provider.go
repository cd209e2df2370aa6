package config

import (
	"github.com/weisyn/rangeregistry/internal/config/api"
	"github.com/weisyn/rangeregistry/internal/config/exec"
	"github.com/weisyn/rangeregistry/internal/config/log"
	"github.com/weisyn/rangeregistry/internal/config/storage/badger"
	"github.com/weisyn/rangeregistry/pkg/interfaces/config"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{
		appConfig: appConfig,
	}
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	// api.New会处理默认值应用和用户配置覆盖
	return api.New(p.appConfig.API).GetOptions()
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return log.New(p.appConfig.Log).GetOptions()
}

// GetBadger 获取BadgerDB存储配置
//
// 未配置 storage.data_root 但配置了 data_dir 时，以 data_dir 作为数据根目录。
func (p *Provider) GetBadger() *badger.BadgerOptions {
	storage := p.appConfig.Storage
	if (storage == nil || storage.DataRoot == nil) && p.appConfig.DataDir != nil {
		merged := &types.UserStorageConfig{DataRoot: p.appConfig.DataDir}
		if storage != nil {
			merged.InMemory = storage.InMemory
			merged.MemTableSizeMB = storage.MemTableSizeMB
		}
		storage = merged
	}
	return badger.New(storage).GetOptions()
}

// GetExec 获取脚本执行配置
func (p *Provider) GetExec() *exec.ExecOptions {
	return exec.New(p.appConfig.Exec).GetOptions()
}

// GetAppConfig 获取原始应用配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}
