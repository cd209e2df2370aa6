// Package persistence 提供活 cell 集合的持久化实现
//
// 🎯 **模块职责**：
// - 提供 CellStore（活 cell 的查询与原子更新）
// - 底层存储为 BadgerDB，由 storage 模块提供
package persistence

import (
	"go.uber.org/fx"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/rangeregistry/pkg/interfaces/persistence"
)

// ModuleInput 定义 persistence 模块的输入依赖
type ModuleInput struct {
	fx.In

	Logger      log.Logger          `optional:"true"`  // 日志记录器
	BadgerStore storage.BadgerStore `optional:"false"` // BadgerDB存储
}

// ModuleOutput 定义 persistence 模块的输出服务
type ModuleOutput struct {
	fx.Out

	CellStore persistence.CellStore
	CellQuery persistence.CellQuery
}

// Module 返回 persistence 模块
func Module() fx.Option {
	return fx.Module("persistence",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建活 cell 存储
func ProvideServices(input ModuleInput) ModuleOutput {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "persistence")
	}
	store := NewCellStore(input.BadgerStore, logger)
	return ModuleOutput{CellStore: store, CellQuery: store}
}
