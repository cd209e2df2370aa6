package tx

import (
	"context"

	"github.com/weisyn/rangeregistry/pkg/types"
)

// TxVerifier 交易脚本验证器（验证微内核）
//
// 把交易的所有 lock / type 脚本按指纹分组，每组运行一次对应程序。
// 验证无副作用：不修改交易，不消费 cell。
type TxVerifier interface {
	// Verify 验证已解析的交易；任意一组拒绝则整体拒绝
	Verify(ctx context.Context, rtx *types.ResolvedTransaction) error

	// VerifyBatch 批量验证，结果与输入一一对应
	VerifyBatch(ctx context.Context, rtxs []*types.ResolvedTransaction) []error
}
