// Package ledger 定义活 cell 账本接口
package ledger

import (
	"context"

	"github.com/weisyn/rangeregistry/pkg/types"
)

// Ledger 账本服务
//
// Verify 只读，可并发调用；Submit 串行执行 解析-验证-应用，
// 保证验证时看到的活 cell 与应用时一致。
type Ledger interface {
	// Resolve 解析交易的输入与 cell 依赖
	Resolve(ctx context.Context, tx *types.Transaction) (*types.ResolvedTransaction, error)

	// Verify 解析并运行全部脚本，返回交易哈希
	Verify(ctx context.Context, tx *types.Transaction) (types.Hash, error)

	// Submit 验证通过后消费输入、创建输出，返回交易哈希
	Submit(ctx context.Context, tx *types.Transaction) (types.Hash, error)

	// Genesis 不经验证直接创建 cell（部署代码 cell、初始化测试状态）
	Genesis(ctx context.Context, outputs []types.CellOutput, outputsData [][]byte) (types.Hash, error)

	// GetCell 读取活 cell
	GetCell(ctx context.Context, outPoint types.OutPoint) (*types.CellMeta, error)

	// ListCells 列出全部活 cell
	ListCells(ctx context.Context) ([]*types.CellMeta, error)
}
