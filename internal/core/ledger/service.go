// Package ledger 提供活 cell 账本服务
//
// 🎯 **核心职责**：
// - 解析交易引用的输入与 cell 依赖
// - 调用验证微内核运行全部脚本组
// - 验证通过后原子地消费输入、创建输出
// - 发布 TxApplied / TxRejected 事件并上报指标
//
// ⚠️ **核心约束**：
// - Submit 串行执行，解析、验证与应用看到同一份活 cell 集合
// - 被拒绝的交易不改变账本
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/metrics"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/writegate"
	ledgeriface "github.com/weisyn/rangeregistry/pkg/interfaces/ledger"
	"github.com/weisyn/rangeregistry/pkg/interfaces/persistence"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
	"github.com/weisyn/rangeregistry/pkg/types"
)

var (
	// ErrMalformedTransaction 交易结构不合法
	ErrMalformedTransaction = errors.New("malformed transaction")
	// ErrDuplicateInput 同一交易多次消费同一个 cell
	ErrDuplicateInput = errors.New("duplicate input")
	// ErrUnsupportedDepType 不支持的 cell 依赖类型
	ErrUnsupportedDepType = errors.New("unsupported dep type")
)

var _ ledgeriface.Ledger = (*Service)(nil)

// Service 账本服务实现
type Service struct {
	cells    persistence.CellStore
	verifier txiface.TxVerifier
	hasher   crypto.HashManager
	bus      event.EventBus
	recorder metrics.Recorder
	gate     writegate.WriteGate
	clock    clock.Clock
	logger   log.Logger

	// 串行化 Submit / Genesis
	mu sync.Mutex
}

// Deps 账本服务依赖；Bus、Recorder、Gate、Logger 可以为 nil
type Deps struct {
	Cells    persistence.CellStore
	Verifier txiface.TxVerifier
	Hasher   crypto.HashManager
	Bus      event.EventBus
	Recorder metrics.Recorder
	Gate     writegate.WriteGate
	Clock    clock.Clock
	Logger   log.Logger
}

// NewService 创建账本服务
func NewService(deps Deps) *Service {
	return &Service{
		cells:    deps.Cells,
		verifier: deps.Verifier,
		hasher:   deps.Hasher,
		bus:      deps.Bus,
		recorder: deps.Recorder,
		gate:     deps.Gate,
		clock:    deps.Clock,
		logger:   deps.Logger,
	}
}

// Resolve 解析交易的输入与 cell 依赖
func (s *Service) Resolve(ctx context.Context, tx *types.Transaction) (*types.ResolvedTransaction, error) {
	if tx == nil {
		return nil, fmt.Errorf("%w: 交易为空", ErrMalformedTransaction)
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTransaction, err)
	}
	// 没有输入的交易哈希不绑定任何被消费的 cell，重放会重建已花费的输出
	if len(tx.Inputs) == 0 {
		return nil, fmt.Errorf("%w: 交易没有输入", ErrMalformedTransaction)
	}

	rtx := &types.ResolvedTransaction{
		Hash:             s.hasher.TransactionHash(tx),
		Transaction:      tx,
		ResolvedInputs:   make([]*types.CellMeta, len(tx.Inputs)),
		ResolvedCellDeps: make([]*types.CellMeta, len(tx.CellDeps)),
	}

	seen := make(map[types.OutPoint]int, len(tx.Inputs))
	for i := range tx.Inputs {
		op := tx.Inputs[i].PreviousOutput
		if j, dup := seen[op]; dup {
			return nil, fmt.Errorf("%w: 输入 %d 与输入 %d 引用同一个 cell %s", ErrDuplicateInput, i, j, op)
		}
		seen[op] = i

		cell, err := s.cells.GetCell(ctx, op)
		if err != nil {
			return nil, fmt.Errorf("解析输入 %d: %w", i, err)
		}
		rtx.ResolvedInputs[i] = cell
	}

	for i := range tx.CellDeps {
		dep := tx.CellDeps[i]
		if dep.DepType != types.DepTypeCode {
			return nil, fmt.Errorf("%w: cell 依赖 %d 的类型为 %s", ErrUnsupportedDepType, i, dep.DepType)
		}
		cell, err := s.cells.GetCell(ctx, dep.OutPoint)
		if err != nil {
			return nil, fmt.Errorf("解析 cell 依赖 %d: %w", i, err)
		}
		rtx.ResolvedCellDeps[i] = cell
	}
	return rtx, nil
}

// Verify 解析并验证交易，不改变账本
func (s *Service) Verify(ctx context.Context, tx *types.Transaction) (types.Hash, error) {
	rtx, err := s.Resolve(ctx, tx)
	if err != nil {
		return s.txHash(tx), err
	}
	return rtx.Hash, s.verifier.Verify(ctx, rtx)
}

// Submit 验证并应用交易
func (s *Service) Submit(ctx context.Context, tx *types.Transaction) (types.Hash, error) {
	if err := s.assertWritable(ctx, "ledger.submit"); err != nil {
		return s.txHash(tx), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rtx, err := s.Resolve(ctx, tx)
	if err != nil {
		hash := s.txHash(tx)
		s.rejected(hash, err)
		return hash, err
	}
	if err := s.verifier.Verify(ctx, rtx); err != nil {
		s.rejected(rtx.Hash, err)
		return rtx.Hash, err
	}

	consumed := make([]types.OutPoint, len(tx.Inputs))
	for i := range tx.Inputs {
		consumed[i] = tx.Inputs[i].PreviousOutput
	}
	created := make([]*types.CellMeta, len(tx.Outputs))
	for i := range tx.Outputs {
		created[i] = rtx.OutputCell(i)
	}

	if err := s.cells.Apply(ctx, consumed, created); err != nil {
		s.rejected(rtx.Hash, err)
		return rtx.Hash, err
	}
	s.applied(rtx.Hash, consumed, created)
	return rtx.Hash, nil
}

// Genesis 不经验证直接创建 cell
//
// 交易哈希额外混入一个随机 header dep，同样的输出多次创建也不会冲突。
func (s *Service) Genesis(ctx context.Context, outputs []types.CellOutput, outputsData [][]byte) (types.Hash, error) {
	if err := s.assertWritable(ctx, "ledger.genesis"); err != nil {
		return types.Hash{}, err
	}

	nonce := uuid.New()
	tx := &types.Transaction{
		HeaderDeps:  []types.Hash{s.hasher.Blake256(nonce[:])},
		Outputs:     outputs,
		OutputsData: make([]hexutil.Bytes, len(outputsData)),
	}
	for i := range outputsData {
		tx.OutputsData[i] = outputsData[i]
	}
	if err := tx.Validate(); err != nil {
		return types.Hash{}, fmt.Errorf("%w: %w", ErrMalformedTransaction, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rtx := &types.ResolvedTransaction{Hash: s.hasher.TransactionHash(tx), Transaction: tx}
	created := make([]*types.CellMeta, len(outputs))
	for i := range outputs {
		created[i] = rtx.OutputCell(i)
	}
	if err := s.cells.Apply(ctx, nil, created); err != nil {
		return rtx.Hash, err
	}
	if s.logger != nil {
		s.logger.Infof("创世交易 %s 创建 %d 个 cell", rtx.Hash.Short(), len(created))
	}
	s.applied(rtx.Hash, nil, created)
	return rtx.Hash, nil
}

// GetCell 读取活 cell
func (s *Service) GetCell(ctx context.Context, outPoint types.OutPoint) (*types.CellMeta, error) {
	return s.cells.GetCell(ctx, outPoint)
}

// ListCells 列出全部活 cell
func (s *Service) ListCells(ctx context.Context) ([]*types.CellMeta, error) {
	return s.cells.ListCells(ctx)
}

func (s *Service) assertWritable(ctx context.Context, op string) error {
	if s.gate == nil {
		return nil
	}
	return s.gate.AssertWriteAllowed(ctx, op)
}

func (s *Service) txHash(tx *types.Transaction) types.Hash {
	if tx == nil {
		return types.Hash{}
	}
	return s.hasher.TransactionHash(tx)
}

func (s *Service) applied(hash types.Hash, consumed []types.OutPoint, created []*types.CellMeta) {
	if s.recorder != nil {
		s.recorder.ObserveLedgerTx(metrics.ResultAccepted)
	}
	if s.logger != nil {
		s.logger.Infof("交易 %s 已应用（消费 %d，创建 %d）", hash.Short(), len(consumed), len(created))
	}
	if s.bus == nil {
		return
	}
	createdPoints := make([]types.OutPoint, len(created))
	for i, cell := range created {
		createdPoints[i] = cell.OutPoint
	}
	s.bus.Publish(types.EventTypeTxApplied, &types.TxAppliedEvent{
		EventID:   uuid.NewString(),
		TxHash:    hash,
		Consumed:  consumed,
		Created:   createdPoints,
		Timestamp: s.now(),
	})
}

func (s *Service) rejected(hash types.Hash, err error) {
	if s.recorder != nil {
		s.recorder.ObserveLedgerTx(metrics.ResultRejected)
	}
	if s.logger != nil {
		s.logger.Warnf("交易 %s 被拒绝: %v", hash.Short(), err)
	}
	if s.bus == nil {
		return
	}
	evt := &types.TxRejectedEvent{
		EventID:   uuid.NewString(),
		TxHash:    hash,
		Reason:    err.Error(),
		Timestamp: s.now(),
	}
	if se, ok := types.AsScriptError(err); ok {
		evt.Code = se.Code
	}
	s.bus.Publish(types.EventTypeTxRejected, evt)
}

func (s *Service) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock.Now()
}
