package verifier

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/rangeregistry/internal/core/tx/testutil"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
	"github.com/weisyn/rangeregistry/pkg/types"
)

var (
	acceptCode = types.BytesToHash([]byte{0xa1})
	rejectCode = types.BytesToHash([]byte{0xb2})
	typeCode   = types.BytesToHash([]byte{0xc3})
)

// newTestKernel 注册一个总是接受、一个总是拒绝、一个计数的 type 程序
func newTestKernel(typeRuns *int32) (*Kernel, *testutil.MockLoader) {
	loader := testutil.NewMockLoader()
	loader.Programs[acceptCode] = &testutil.FuncProgram{
		ProgramName: "accept",
		Fn:          func(context.Context, *txiface.ProgramEnv) error { return nil },
	}
	loader.Programs[rejectCode] = &testutil.FuncProgram{
		ProgramName: "reject",
		Fn: func(context.Context, *txiface.ProgramEnv) error {
			return types.ErrWrongWitness
		},
	}
	loader.Programs[typeCode] = &testutil.FuncProgram{
		ProgramName: "type",
		Fn: func(_ context.Context, env *txiface.ProgramEnv) error {
			atomic.AddInt32(typeRuns, 1)
			if env.View.GroupInputState() != txiface.GroupNonEmpty {
				return errors.New("type 组应包含输入")
			}
			return nil
		},
	}
	return NewKernel(loader, testutil.NewHasher(), nil, testutil.NewTestLogger()), loader
}

// TestVerify_Success 全部脚本组接受
func TestVerify_Success(t *testing.T) {
	var typeRuns int32
	kernel, _ := newTestKernel(&typeRuns)
	hasher := testutil.NewHasher()

	lock := testutil.CodeScript(acceptCode, types.HashTypeData, nil)
	typ := testutil.CodeScript(typeCode, types.HashTypeType, []byte{0x01})

	rtx := testutil.NewTxBuilder(hasher).
		Input(lock, typ, nil).
		Input(lock, nil, nil).
		Output(lock, typ, nil).
		Build()

	require.NoError(t, kernel.Verify(context.Background(), rtx))
	assert.Equal(t, int32(1), typeRuns, "同一 type 脚本只运行一次")
}

// TestVerify_GroupRejected 拒绝原因可以穿透组错误
func TestVerify_GroupRejected(t *testing.T) {
	var typeRuns int32
	kernel, _ := newTestKernel(&typeRuns)
	hasher := testutil.NewHasher()

	accept := testutil.CodeScript(acceptCode, types.HashTypeData, nil)
	reject := testutil.CodeScript(rejectCode, types.HashTypeData, nil)

	rtx := testutil.NewTxBuilder(hasher).
		Input(accept, nil, nil).
		Input(reject, nil, nil).
		Output(accept, nil, nil).
		Build()

	err := kernel.Verify(context.Background(), rtx)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrWrongWitness)

	var groupErr *GroupError
	require.True(t, errors.As(err, &groupErr))
	assert.Equal(t, LockGroup, groupErr.Type)
	assert.Equal(t, "reject", groupErr.Program)
	assert.Equal(t, hasher.ScriptHash(reject), groupErr.ScriptHash)

	se, ok := types.AsScriptError(err)
	require.True(t, ok)
	assert.Equal(t, int8(15), se.Code)
}

// TestVerify_FirstGroupErrorWins 多个组失败时总是报告排在最前的组
func TestVerify_FirstGroupErrorWins(t *testing.T) {
	var typeRuns int32
	kernel, loader := newTestKernel(&typeRuns)
	kernel.concurrency = 4
	hasher := testutil.NewHasher()

	slowCode := types.BytesToHash([]byte{0xd4})
	loader.Programs[slowCode] = &testutil.FuncProgram{
		ProgramName: "slow-reject",
		Fn: func(context.Context, *txiface.ProgramEnv) error {
			time.Sleep(20 * time.Millisecond)
			return types.ErrInvalidLinkedList
		},
	}

	slow := testutil.CodeScript(slowCode, types.HashTypeData, nil)
	reject := testutil.CodeScript(rejectCode, types.HashTypeData, nil)
	rtx := testutil.NewTxBuilder(hasher).
		Input(slow, nil, nil).
		Input(reject, nil, nil).
		Build()

	for i := 0; i < 5; i++ {
		err := kernel.Verify(context.Background(), rtx)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidLinkedList)

		var groupErr *GroupError
		require.True(t, errors.As(err, &groupErr))
		assert.Equal(t, "slow-reject", groupErr.Program)
	}
}

// TestVerify_OutputLocksNotRun 输出的 lock 不参与验证
func TestVerify_OutputLocksNotRun(t *testing.T) {
	var typeRuns int32
	kernel, _ := newTestKernel(&typeRuns)
	hasher := testutil.NewHasher()

	accept := testutil.CodeScript(acceptCode, types.HashTypeData, nil)
	reject := testutil.CodeScript(rejectCode, types.HashTypeData, nil)

	rtx := testutil.NewTxBuilder(hasher).
		Input(accept, nil, nil).
		Output(reject, nil, nil).
		Build()

	assert.NoError(t, kernel.Verify(context.Background(), rtx))
}

// TestVerify_ScriptNotFound 找不到程序时拒绝
func TestVerify_ScriptNotFound(t *testing.T) {
	var typeRuns int32
	kernel, _ := newTestKernel(&typeRuns)
	hasher := testutil.NewHasher()

	unknown := testutil.CodeScript(types.BytesToHash([]byte{0xff}), types.HashTypeData, nil)
	rtx := testutil.NewTxBuilder(hasher).Input(unknown, nil, nil).Build()

	err := kernel.Verify(context.Background(), rtx)
	assert.ErrorIs(t, err, types.ErrScriptNotFound)
}

// TestVerify_MalformedResolution 解析信息与交易不一致时直接报错
func TestVerify_MalformedResolution(t *testing.T) {
	var typeRuns int32
	kernel, loader := newTestKernel(&typeRuns)
	hasher := testutil.NewHasher()

	accept := testutil.CodeScript(acceptCode, types.HashTypeData, nil)
	rtx := testutil.NewTxBuilder(hasher).Input(accept, nil, nil).Build()
	rtx.ResolvedInputs = nil

	assert.Error(t, kernel.Verify(context.Background(), rtx))
	assert.Error(t, kernel.Verify(context.Background(), nil))
	assert.Equal(t, 0, loader.LoadCount)

	rtx = testutil.NewTxBuilder(hasher).Input(accept, nil, nil).Output(accept, nil, nil).Build()
	rtx.Transaction.OutputsData = nil
	assert.Error(t, kernel.Verify(context.Background(), rtx))
}

// TestVerifyBatch 批量结果与输入一一对应
func TestVerifyBatch(t *testing.T) {
	var typeRuns int32
	kernel, _ := newTestKernel(&typeRuns)
	hasher := testutil.NewHasher()

	accept := testutil.CodeScript(acceptCode, types.HashTypeData, nil)
	reject := testutil.CodeScript(rejectCode, types.HashTypeData, nil)

	good := testutil.NewTxBuilder(hasher).Input(accept, nil, nil).Build()
	bad := testutil.NewTxBuilder(hasher).Input(reject, nil, nil).Build()

	results := kernel.VerifyBatch(context.Background(), []*types.ResolvedTransaction{good, bad, good})
	require.Len(t, results, 3)
	assert.NoError(t, results[0])
	assert.ErrorIs(t, results[1], types.ErrWrongWitness)
	assert.NoError(t, results[2])
}

// TestVerify_CanceledContext 上下文取消后不再运行程序
func TestVerify_CanceledContext(t *testing.T) {
	var typeRuns int32
	kernel, _ := newTestKernel(&typeRuns)
	hasher := testutil.NewHasher()

	typ := testutil.CodeScript(typeCode, types.HashTypeType, nil)
	accept := testutil.CodeScript(acceptCode, types.HashTypeData, nil)
	rtx := testutil.NewTxBuilder(hasher).Input(accept, typ, nil).Build()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, kernel.Verify(ctx, rtx), context.Canceled)
	assert.Equal(t, int32(0), typeRuns)
}
