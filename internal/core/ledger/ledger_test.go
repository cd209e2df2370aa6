package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	badgerconfig "github.com/weisyn/rangeregistry/internal/config/storage/badger"
	"github.com/weisyn/rangeregistry/internal/core/exec"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/clock"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/event"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/writegate"
	"github.com/weisyn/rangeregistry/internal/core/persistence"
	txmodule "github.com/weisyn/rangeregistry/internal/core/tx"
	"github.com/weisyn/rangeregistry/internal/core/tx/verifier"
	"github.com/weisyn/rangeregistry/internal/core/tx/verifier/plugins/demo"
	"github.com/weisyn/rangeregistry/internal/core/tx/verifier/plugins/lookup"
	"github.com/weisyn/rangeregistry/internal/core/tx/verifier/plugins/registry"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/metrics"
	wgif "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/writegate"
	persistenceiface "github.com/weisyn/rangeregistry/pkg/interfaces/persistence"
	"github.com/weisyn/rangeregistry/pkg/types"
)

var genesisTime = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// countingRecorder 统计账本交易结果
type countingRecorder struct {
	mu      sync.Mutex
	results map[string]int
}

func (r *countingRecorder) ObserveGroup(string, string, time.Duration) {}

func (r *countingRecorder) ObserveLedgerTx(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result]++
}

func (r *countingRecorder) count(result string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results[result]
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	ledger   *Service
	hasher   crypto.HashManager
	gate     wgif.WriteGate
	recorder *countingRecorder

	codeHashes map[string]types.Hash
	codeDeps   []types.CellDep
	funding    []types.OutPoint

	mu       sync.Mutex
	applied  []*types.TxAppliedEvent
	rejected []*types.TxRejectedEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := badger.New(badgerconfig.New(&types.UserStorageConfig{InMemory: types.BoolPtr(true)}), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hasher := hash.NewHashService()
	executor := exec.NewExecutor(hasher, nil, nil, nil)
	require.NoError(t, txmodule.RegisterBuiltinPrograms(executor, hasher, nil))

	f := &fixture{
		t:          t,
		ctx:        context.Background(),
		hasher:     hasher,
		gate:       writegate.New(),
		recorder:   &countingRecorder{results: map[string]int{}},
		codeHashes: map[string]types.Hash{},
	}

	bus := event.New(nil)
	require.NoError(t, bus.Subscribe(types.EventTypeTxApplied, func(evt *types.TxAppliedEvent) {
		f.mu.Lock()
		f.applied = append(f.applied, evt)
		f.mu.Unlock()
	}))
	require.NoError(t, bus.Subscribe(types.EventTypeTxRejected, func(evt *types.TxRejectedEvent) {
		f.mu.Lock()
		f.rejected = append(f.rejected, evt)
		f.mu.Unlock()
	}))

	f.ledger = NewService(Deps{
		Cells:    persistence.NewCellStore(store, nil),
		Verifier: verifier.NewKernel(executor, hasher, f.recorder, nil),
		Hasher:   hasher,
		Bus:      bus,
		Recorder: f.recorder,
		Gate:     f.gate,
		Clock:    clock.NewMockClock(genesisTime),
	})

	f.deploy()
	return f
}

// deploy 部署内置程序的代码 cell 与三个资金 cell
func (f *fixture) deploy() {
	programs := []string{registry.ProgramName, lookup.ProgramName, demo.ReversedWitnessName, demo.AlwaysSuccessName}
	for _, name := range programs {
		f.codeHashes[name] = f.hasher.Blake256(exec.NativeCode(name))
	}

	var outputs []types.CellOutput
	var data [][]byte
	for _, name := range programs {
		outputs = append(outputs, types.CellOutput{Capacity: 1000, Lock: f.alwaysLock(nil)})
		data = append(data, exec.NativeCode(name))
	}
	for i := 0; i < 3; i++ {
		outputs = append(outputs, types.CellOutput{Capacity: 1000, Lock: f.alwaysLock([]byte{byte(i)})})
		data = append(data, nil)
	}

	genesis, err := f.ledger.Genesis(f.ctx, outputs, data)
	require.NoError(f.t, err)
	for i := range programs {
		f.codeDeps = append(f.codeDeps, types.CellDep{OutPoint: types.OutPoint{TxHash: genesis, Index: uint32(i)}})
	}
	for i := 0; i < 3; i++ {
		f.funding = append(f.funding, types.OutPoint{TxHash: genesis, Index: uint32(len(programs) + i)})
	}
}

func (f *fixture) script(program string, args []byte) *types.Script {
	return &types.Script{CodeHash: f.codeHashes[program], HashType: types.HashTypeData, Args: args}
}

func (f *fixture) alwaysLock(args []byte) *types.Script {
	return f.script(demo.AlwaysSuccessName, args)
}

func (f *fixture) lastRejected() *types.TxRejectedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.rejected)
	return f.rejected[len(f.rejected)-1]
}

func (f *fixture) appliedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

// createRegistry 消费资金 cell 创建覆盖整个键空间的注册表
func (f *fixture) createRegistry(funding types.OutPoint, value []byte) (*types.Script, types.OutPoint) {
	input := types.CellInput{PreviousOutput: funding}
	typeScript := f.script(registry.ProgramName, f.hasher.InstanceID(&input, 0).Bytes())

	tx := &types.Transaction{
		CellDeps: f.codeDeps,
		Inputs:   []types.CellInput{input},
		Outputs: []types.CellOutput{
			{Capacity: 1000, Lock: f.alwaysLock(key(0x00)), Type: typeScript},
		},
		OutputsData: []hexutil.Bytes{concat(key(0xff), value)},
	}
	txHash, err := f.ledger.Submit(f.ctx, tx)
	require.NoError(f.t, err)
	return typeScript, types.OutPoint{TxHash: txHash, Index: 0}
}

func key(b byte) []byte {
	out := make([]byte, types.HashLength)
	for i := range out {
		out[i] = b
	}
	return out
}

func keyWithPrefix(prefix byte) []byte {
	out := make([]byte, types.HashLength)
	out[0] = prefix
	return out
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestLedger_Genesis(t *testing.T) {
	f := newFixture(t)

	cells, err := f.ledger.ListCells(f.ctx)
	require.NoError(t, err)
	assert.Len(t, cells, 7)

	cell, err := f.ledger.GetCell(f.ctx, f.codeDeps[0].OutPoint)
	require.NoError(t, err)
	assert.Equal(t, exec.NativeCode(registry.ProgramName), []byte(cell.Data))

	// 相同输出再次创建得到不同的交易哈希
	out := []types.CellOutput{{Capacity: 1, Lock: f.alwaysLock(nil)}}
	h1, err := f.ledger.Genesis(f.ctx, out, [][]byte{nil})
	require.NoError(t, err)
	h2, err := f.ledger.Genesis(f.ctx, out, [][]byte{nil})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	_, err = f.ledger.Genesis(f.ctx, out, nil)
	assert.ErrorIs(t, err, ErrMalformedTransaction)

	assert.Equal(t, 3, f.appliedCount())
	assert.Equal(t, genesisTime, f.applied[0].Timestamp)
	assert.NotEmpty(t, f.applied[0].EventID)
}

func TestLedger_RegistryLifecycle(t *testing.T) {
	f := newFixture(t)
	value := key(0x11)

	typeScript, root := f.createRegistry(f.funding[0], value)
	_, err := f.ledger.GetCell(f.ctx, f.funding[0])
	assert.ErrorIs(t, err, persistenceiface.ErrUnknownOutPoint)

	// 拆分 [00, ff) 为 [00, 80) 与 [80, ff)
	split := &types.Transaction{
		CellDeps: f.codeDeps,
		Inputs:   []types.CellInput{{PreviousOutput: root}},
		Outputs: []types.CellOutput{
			{Capacity: 500, Lock: f.alwaysLock(key(0x00)), Type: typeScript},
			{Capacity: 500, Lock: f.alwaysLock(keyWithPrefix(0x80)), Type: typeScript},
		},
		OutputsData: []hexutil.Bytes{concat(keyWithPrefix(0x80), value), concat(key(0xff), value)},
	}
	splitHash, err := f.ledger.Submit(f.ctx, split)
	require.NoError(t, err)

	_, err = f.ledger.GetCell(f.ctx, root)
	assert.ErrorIs(t, err, persistenceiface.ErrUnknownOutPoint)
	low, err := f.ledger.GetCell(f.ctx, types.OutPoint{TxHash: splitHash, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, keyWithPrefix(0x80), []byte(low.Data[:types.HashLength]))

	// 再次提交同一笔交易：输入已被消费
	_, err = f.ledger.Submit(f.ctx, split)
	assert.ErrorIs(t, err, persistenceiface.ErrUnknownOutPoint)

	// 顺序颠倒的拆分被拒绝，账本不变
	before, err := f.ledger.ListCells(f.ctx)
	require.NoError(t, err)
	lowPoint := types.OutPoint{TxHash: splitHash, Index: 0}
	reversed := &types.Transaction{
		CellDeps: f.codeDeps,
		Inputs:   []types.CellInput{{PreviousOutput: lowPoint}},
		Outputs: []types.CellOutput{
			{Capacity: 250, Lock: f.alwaysLock(keyWithPrefix(0x40)), Type: typeScript},
			{Capacity: 250, Lock: f.alwaysLock(key(0x00)), Type: typeScript},
		},
		OutputsData: []hexutil.Bytes{concat(keyWithPrefix(0x80), value), concat(keyWithPrefix(0x40), value)},
	}
	txHash, err := f.ledger.Submit(f.ctx, reversed)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidLinkedList)

	evt := f.lastRejected()
	assert.Equal(t, txHash, evt.TxHash)
	assert.Equal(t, types.ErrInvalidLinkedList.Code, evt.Code)

	after, err := f.ledger.ListCells(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	assert.Equal(t, 3, f.recorder.count(metrics.ResultAccepted)) // 部署 + 创建 + 拆分
	assert.Equal(t, 2, f.recorder.count(metrics.ResultRejected))
}

func TestLedger_LookupAndSelfUpdate(t *testing.T) {
	f := newFixture(t)
	typeScript, _ := f.createRegistry(f.funding[0], key(0x11))
	registryID := f.hasher.ScriptHash(typeScript)

	delegateScript := f.script(demo.ReversedWitnessName, []byte{1, 2, 3})
	authWitness := lookup.BuildWitness(1, delegateScript)
	fingerprint := f.hasher.ScriptHash(delegateScript)

	// 区间记录 [10.., ff..)，值为委托脚本指纹
	recordStart := keyWithPrefix(0x10)
	recordLock := f.script(lookup.ProgramName, lookup.Args(registryID, recordStart))
	seed, err := f.ledger.Genesis(f.ctx,
		[]types.CellOutput{{Capacity: 1000, Lock: recordLock, Type: typeScript}},
		[][]byte{concat(key(0xff), fingerprint.Bytes())},
	)
	require.NoError(t, err)
	record := types.OutPoint{TxHash: seed, Index: 0}

	// 用户 cell 由查询 lock 保护，键恰好为记录起点
	userLock := f.script(lookup.ProgramName, lookup.Args(registryID, recordStart))
	fund := &types.Transaction{
		CellDeps:    f.codeDeps,
		Inputs:      []types.CellInput{{PreviousOutput: f.funding[1]}},
		Outputs:     []types.CellOutput{{Capacity: 1000, Lock: userLock}},
		OutputsData: []hexutil.Bytes{nil},
	}
	fundHash, err := f.ledger.Submit(f.ctx, fund)
	require.NoError(t, err)
	userCell := types.OutPoint{TxHash: fundHash, Index: 0}

	spend := func(witness1 []byte) *types.Transaction {
		return &types.Transaction{
			CellDeps:    append([]types.CellDep{{OutPoint: record}}, f.codeDeps...),
			Inputs:      []types.CellInput{{PreviousOutput: userCell}},
			Outputs:     []types.CellOutput{{Capacity: 1000, Lock: f.alwaysLock(nil)}},
			OutputsData: []hexutil.Bytes{nil},
			Witnesses:   []hexutil.Bytes{authWitness, witness1},
		}
	}

	t.Run("delegate rejects", func(t *testing.T) {
		_, err := f.ledger.Submit(f.ctx, spend([]byte{1, 2, 3}))
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrWrongWitness)
		assert.ErrorIs(t, err, types.ErrDelegateRejected)
		assert.Equal(t, types.ErrDelegateRejected.Code, f.lastRejected().Code)

		_, err = f.ledger.GetCell(f.ctx, userCell)
		assert.NoError(t, err)
	})

	t.Run("verify does not apply", func(t *testing.T) {
		_, err := f.ledger.Verify(f.ctx, spend([]byte{3, 2, 1}))
		require.NoError(t, err)
		_, err = f.ledger.GetCell(f.ctx, userCell)
		assert.NoError(t, err)
	})

	t.Run("lookup accepted", func(t *testing.T) {
		_, err := f.ledger.Submit(f.ctx, spend([]byte{3, 2, 1}))
		require.NoError(t, err)
		_, err = f.ledger.GetCell(f.ctx, userCell)
		assert.ErrorIs(t, err, persistenceiface.ErrUnknownOutPoint)
	})

	update := func(auth []byte, newValue []byte) *types.Transaction {
		return &types.Transaction{
			CellDeps:    f.codeDeps,
			Inputs:      []types.CellInput{{PreviousOutput: record}},
			Outputs:     []types.CellOutput{{Capacity: 1000, Lock: recordLock, Type: typeScript}},
			OutputsData: []hexutil.Bytes{concat(key(0xff), newValue)},
			Witnesses:   []hexutil.Bytes{auth, {3, 2, 1}},
		}
	}

	t.Run("self update with foreign script", func(t *testing.T) {
		foreign := lookup.BuildWitness(1, f.script(demo.ReversedWitnessName, []byte{9}))
		_, err := f.ledger.Submit(f.ctx, update(foreign, key(0x22)))
		assert.ErrorIs(t, err, types.ErrInvalidWrappedScriptHash)
	})

	t.Run("self update accepted", func(t *testing.T) {
		txHash, err := f.ledger.Submit(f.ctx, update(authWitness, key(0x22)))
		require.NoError(t, err)

		cell, err := f.ledger.GetCell(f.ctx, types.OutPoint{TxHash: txHash, Index: 0})
		require.NoError(t, err)
		assert.Equal(t, key(0x22), []byte(cell.Data[types.HashLength:]))
		assert.True(t, cell.Output.Lock.Equal(recordLock))
	})
}

func TestLedger_ResolveErrors(t *testing.T) {
	f := newFixture(t)

	t.Run("unknown input", func(t *testing.T) {
		tx := &types.Transaction{
			Inputs: []types.CellInput{{PreviousOutput: types.OutPoint{TxHash: types.BytesToHash([]byte{0xee})}}},
		}
		_, err := f.ledger.Resolve(f.ctx, tx)
		assert.ErrorIs(t, err, persistenceiface.ErrUnknownOutPoint)
	})

	t.Run("duplicate input", func(t *testing.T) {
		tx := &types.Transaction{
			Inputs: []types.CellInput{{PreviousOutput: f.funding[0]}, {PreviousOutput: f.funding[0]}},
		}
		_, err := f.ledger.Resolve(f.ctx, tx)
		assert.ErrorIs(t, err, ErrDuplicateInput)
	})

	t.Run("no inputs", func(t *testing.T) {
		tx := &types.Transaction{
			CellDeps:    f.codeDeps,
			Outputs:     []types.CellOutput{{Capacity: 1000, Lock: f.alwaysLock(nil)}},
			OutputsData: []hexutil.Bytes{nil},
		}
		_, err := f.ledger.Resolve(f.ctx, tx)
		assert.ErrorIs(t, err, ErrMalformedTransaction)
		_, err = f.ledger.Submit(f.ctx, tx)
		assert.ErrorIs(t, err, ErrMalformedTransaction)
	})

	t.Run("dep group", func(t *testing.T) {
		tx := &types.Transaction{
			CellDeps: []types.CellDep{{OutPoint: f.codeDeps[0].OutPoint, DepType: types.DepTypeDepGroup}},
			Inputs:   []types.CellInput{{PreviousOutput: f.funding[0]}},
		}
		_, err := f.ledger.Resolve(f.ctx, tx)
		assert.ErrorIs(t, err, ErrUnsupportedDepType)
	})

	t.Run("outputs data mismatch", func(t *testing.T) {
		tx := &types.Transaction{Outputs: []types.CellOutput{{Lock: f.alwaysLock(nil)}}}
		_, err := f.ledger.Resolve(f.ctx, tx)
		assert.ErrorIs(t, err, ErrMalformedTransaction)
	})

	t.Run("resolved order", func(t *testing.T) {
		tx := &types.Transaction{
			CellDeps: f.codeDeps,
			Inputs:   []types.CellInput{{PreviousOutput: f.funding[2]}, {PreviousOutput: f.funding[1]}},
		}
		rtx, err := f.ledger.Resolve(f.ctx, tx)
		require.NoError(t, err)
		assert.Equal(t, f.funding[2], rtx.ResolvedInputs[0].OutPoint)
		assert.Equal(t, f.funding[1], rtx.ResolvedInputs[1].OutPoint)
		assert.Len(t, rtx.ResolvedCellDeps, len(f.codeDeps))
		assert.Equal(t, f.hasher.TransactionHash(tx), rtx.Hash)
	})

	_, err := f.ledger.Resolve(f.ctx, nil)
	assert.ErrorIs(t, err, ErrMalformedTransaction)
}

// 已应用的交易不能再次提交，被花费的输出也不会复活
func TestLedger_Replay(t *testing.T) {
	f := newFixture(t)

	first := &types.Transaction{
		CellDeps:    f.codeDeps,
		Inputs:      []types.CellInput{{PreviousOutput: f.funding[0]}},
		Outputs:     []types.CellOutput{{Capacity: 1000, Lock: f.alwaysLock([]byte{0x10})}},
		OutputsData: []hexutil.Bytes{nil},
	}
	firstHash, err := f.ledger.Submit(f.ctx, first)
	require.NoError(t, err)
	created := types.OutPoint{TxHash: firstHash, Index: 0}

	spend := &types.Transaction{
		CellDeps:    f.codeDeps,
		Inputs:      []types.CellInput{{PreviousOutput: created}},
		Outputs:     []types.CellOutput{{Capacity: 1000, Lock: f.alwaysLock([]byte{0x20})}},
		OutputsData: []hexutil.Bytes{nil},
	}
	_, err = f.ledger.Submit(f.ctx, spend)
	require.NoError(t, err)

	_, err = f.ledger.Submit(f.ctx, first)
	assert.ErrorIs(t, err, persistenceiface.ErrUnknownOutPoint)

	_, err = f.ledger.GetCell(f.ctx, created)
	assert.ErrorIs(t, err, persistenceiface.ErrUnknownOutPoint)
}

func TestLedger_ReadOnly(t *testing.T) {
	f := newFixture(t)
	tx := &types.Transaction{
		CellDeps:    f.codeDeps,
		Inputs:      []types.CellInput{{PreviousOutput: f.funding[0]}},
		Outputs:     []types.CellOutput{{Capacity: 1000, Lock: f.alwaysLock(nil)}},
		OutputsData: []hexutil.Bytes{nil},
	}

	f.gate.EnterReadOnly("maintenance")
	_, err := f.ledger.Submit(f.ctx, tx)
	assert.True(t, errors.Is(err, wgif.ErrWriteBlocked))
	_, err = f.ledger.Genesis(f.ctx, nil, nil)
	assert.ErrorIs(t, err, wgif.ErrWriteBlocked)

	// 只读模式下仍可验证
	_, err = f.ledger.Verify(f.ctx, tx)
	assert.NoError(t, err)

	f.gate.ExitReadOnly()
	_, err = f.ledger.Submit(f.ctx, tx)
	assert.NoError(t, err)
}
