// Package storage 提供存储管理功能
package storage

import (
	"context"
	"fmt"

	badgerconfig "github.com/weisyn/rangeregistry/internal/config/storage/badger"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/rangeregistry/pkg/interfaces/config"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Provider  config.Provider // 配置提供者
	Logger    log.Logger      // 日志记录器
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	BadgerStore storageInterface.BadgerStore // BadgerDB存储（必需，失败即错误）
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 根据配置打开 BadgerDB，并在应用停止时关闭
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	logger := params.Logger.With("module", "storage")

	var cfg *badgerconfig.Config
	if opts := params.Provider.GetBadger(); opts != nil {
		cfg = badgerconfig.NewFromOptions(opts)
	} else {
		cfg = badgerconfig.New(nil)
	}

	store, err := badger.New(cfg, logger)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("创建BadgerDB存储失败: %w", err)
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("正在关闭存储服务...")
			return store.Close()
		},
	})

	return ModuleOutput{BadgerStore: store}, nil
}
