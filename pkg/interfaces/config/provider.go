// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/weisyn/rangeregistry/internal/config/api"
	execconfig "github.com/weisyn/rangeregistry/internal/config/exec"
	logconfig "github.com/weisyn/rangeregistry/internal/config/log"
	badgerconfig "github.com/weisyn/rangeregistry/internal/config/storage/badger"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// Provider 配置提供者接口
type Provider interface {
	// GetAPI 获取API服务配置
	GetAPI() *apiconfig.APIOptions

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetBadger 获取BadgerDB存储配置
	GetBadger() *badgerconfig.BadgerOptions

	// GetExec 获取脚本执行配置
	GetExec() *execconfig.ExecOptions

	// GetAppConfig 获取原始应用配置
	GetAppConfig() *types.AppConfig
}
