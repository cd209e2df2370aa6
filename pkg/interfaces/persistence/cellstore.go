// Package persistence 定义活 cell 集合的读写接口
package persistence

import (
	"context"
	"errors"

	"github.com/weisyn/rangeregistry/pkg/types"
)

// ErrUnknownOutPoint 引用的 cell 不存在或已被消费
var ErrUnknownOutPoint = errors.New("unknown or dead out point")

// ErrOutPointExists 新建的 cell 与已有的活 cell 占用同一个 out point
var ErrOutPointExists = errors.New("out point already exists")

// CellQuery 活 cell 查询
type CellQuery interface {
	// GetCell 读取活 cell；不存在时返回 ErrUnknownOutPoint
	GetCell(ctx context.Context, outPoint types.OutPoint) (*types.CellMeta, error)

	// ListCells 列出全部活 cell，按 (tx_hash, index) 排列
	ListCells(ctx context.Context) ([]*types.CellMeta, error)
}

// CellWriter 活 cell 写入
type CellWriter interface {
	// Apply 原子地消费 consumed 并创建 created
	//
	// 任一 consumed 已不存在，或任一 created 的 out point 已被占用时整体失败。
	Apply(ctx context.Context, consumed []types.OutPoint, created []*types.CellMeta) error
}

// CellStore 活 cell 存储
type CellStore interface {
	CellQuery
	CellWriter
}
