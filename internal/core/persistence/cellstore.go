package persistence

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/rangeregistry/pkg/interfaces/persistence"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// CellKeyPrefix 活 cell 键前缀
//
// 键格式：cell/ ++ tx_hash(32) ++ be32(index)，前缀扫描即按 (tx_hash, index) 有序。
const CellKeyPrefix = "cell/"

// 确保 CellStore 实现了 persistence.CellStore 接口
var _ persistence.CellStore = (*CellStore)(nil)

// CellStore 基于 BadgerDB 的活 cell 集合
//
// 值为 molecule 编码的 [CellOutput, Bytes(data)]。
type CellStore struct {
	store  storage.BadgerStore
	logger log.Logger
}

// NewCellStore 创建活 cell 存储
func NewCellStore(store storage.BadgerStore, logger log.Logger) *CellStore {
	return &CellStore{store: store, logger: logger}
}

// CellKey 活 cell 的存储键
func CellKey(outPoint types.OutPoint) []byte {
	key := make([]byte, 0, len(CellKeyPrefix)+types.HashLength+4)
	key = append(key, CellKeyPrefix...)
	key = append(key, outPoint.TxHash[:]...)
	return binary.BigEndian.AppendUint32(key, outPoint.Index)
}

// parseCellKey 从存储键还原 OutPoint
func parseCellKey(key []byte) (types.OutPoint, error) {
	if len(key) != len(CellKeyPrefix)+types.HashLength+4 {
		return types.OutPoint{}, fmt.Errorf("无效的 cell 键长度 %d", len(key))
	}
	body := key[len(CellKeyPrefix):]
	return types.OutPoint{
		TxHash: types.BytesToHash(body[:types.HashLength]),
		Index:  binary.BigEndian.Uint32(body[types.HashLength:]),
	}, nil
}

// GetCell 实现 persistence.CellQuery
func (s *CellStore) GetCell(ctx context.Context, outPoint types.OutPoint) (*types.CellMeta, error) {
	entry, err := s.store.Get(ctx, CellKey(outPoint))
	if err != nil {
		return nil, fmt.Errorf("读取 cell %s 失败: %w", outPoint, err)
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", persistence.ErrUnknownOutPoint, outPoint)
	}
	cell, err := types.ParseCellEntry(outPoint, entry)
	if err != nil {
		return nil, fmt.Errorf("解码 cell %s 失败: %w", outPoint, err)
	}
	return cell, nil
}

// ListCells 实现 persistence.CellQuery
func (s *CellStore) ListCells(ctx context.Context) ([]*types.CellMeta, error) {
	entries, err := s.store.PrefixScan(ctx, []byte(CellKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("扫描活 cell 失败: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	cells := make([]*types.CellMeta, 0, len(keys))
	for _, key := range keys {
		outPoint, err := parseCellKey([]byte(key))
		if err != nil {
			return nil, err
		}
		cell, err := types.ParseCellEntry(outPoint, entries[key])
		if err != nil {
			return nil, fmt.Errorf("解码 cell %s 失败: %w", outPoint, err)
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// Apply 实现 persistence.CellWriter
func (s *CellStore) Apply(ctx context.Context, consumed []types.OutPoint, created []*types.CellMeta) error {
	err := s.store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		for _, outPoint := range consumed {
			key := CellKey(outPoint)
			exists, err := tx.Exists(key)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: %s", persistence.ErrUnknownOutPoint, outPoint)
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		for _, cell := range created {
			key := CellKey(cell.OutPoint)
			exists, err := tx.Exists(key)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: %s", persistence.ErrOutPointExists, cell.OutPoint)
			}
			if err := tx.Set(key, cell.SerializeEntry()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Debugf("活 cell 集合已更新：消费 %d，创建 %d", len(consumed), len(created))
	}
	return nil
}
