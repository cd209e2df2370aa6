package exec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	execconfig "github.com/weisyn/rangeregistry/internal/config/exec"
	"github.com/weisyn/rangeregistry/internal/core/tx/testutil"
	"github.com/weisyn/rangeregistry/internal/core/tx/verifier"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
	"github.com/weisyn/rangeregistry/pkg/types"
)

func newTestExecutor(t *testing.T, depth int) (*Executor, crypto.HashManager) {
	t.Helper()
	hasher := testutil.NewHasher()
	options := execconfig.New(nil).GetOptions()
	options.MaxExecDepth = depth
	return NewExecutor(hasher, nil, options, testutil.NewTestLogger()), hasher
}

func program(name string, fn func(context.Context, *txiface.ProgramEnv) error) *testutil.FuncProgram {
	return &testutil.FuncProgram{ProgramName: name, Fn: fn}
}

func accept(context.Context, *txiface.ProgramEnv) error { return nil }

func TestRegisterProgram(t *testing.T) {
	executor, _ := newTestExecutor(t, 4)

	require.NoError(t, executor.RegisterProgram(program("b", accept)))
	require.NoError(t, executor.RegisterProgram(program("a", accept)))
	assert.Error(t, executor.RegisterProgram(program("a", accept)))
	assert.Error(t, executor.RegisterProgram(program("", accept)))
	assert.Equal(t, []string{"a", "b"}, executor.Programs())
}

func TestLoad(t *testing.T) {
	executor, hasher := newTestExecutor(t, 4)
	require.NoError(t, executor.RegisterProgram(program("native", accept)))

	funding := testutil.CodeScript(types.BytesToHash([]byte("funding")), types.HashTypeData, nil)
	codeType := testutil.CodeScript(types.BytesToHash([]byte("type-id")), types.HashTypeType, []byte{0x01})
	code := NativeCode("native")

	rtx := testutil.NewTxBuilder(hasher).
		CellDep(funding, nil, []byte("not code")).
		CellDep(funding, codeType, code).
		CellDep(funding, nil, NativeCode("missing")).
		CellDep(funding, nil, []byte("\x00asm\x01\x00\x00\x00")).
		Input(funding, nil, nil).
		Build()
	view, err := verifier.GroupView(rtx, hasher, verifier.LockGroup, funding)
	require.NoError(t, err)

	t.Run("by data hash", func(t *testing.T) {
		for _, hashType := range []types.ScriptHashType{types.HashTypeData, types.HashTypeData1, types.HashTypeData2} {
			p, err := executor.Load(view, hasher.Blake256(code), hashType)
			require.NoError(t, err)
			assert.Equal(t, "native", p.Name())
		}
	})

	t.Run("by type hash", func(t *testing.T) {
		p, err := executor.Load(view, hasher.ScriptHash(codeType), types.HashTypeType)
		require.NoError(t, err)
		assert.Equal(t, "native", p.Name())
	})

	t.Run("type hash does not match data", func(t *testing.T) {
		_, err := executor.Load(view, hasher.Blake256(code), types.HashTypeType)
		assert.ErrorIs(t, err, types.ErrScriptNotFound)
	})

	t.Run("unregistered native", func(t *testing.T) {
		_, err := executor.Load(view, hasher.Blake256(NativeCode("missing")), types.HashTypeData)
		assert.ErrorIs(t, err, types.ErrScriptNotFound)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := executor.Load(view, hasher.Blake256([]byte("not code")), types.HashTypeData)
		assert.ErrorIs(t, err, types.ErrScriptNotFound)
	})

	t.Run("wasm without runtime", func(t *testing.T) {
		_, err := executor.Load(view, hasher.Blake256([]byte("\x00asm\x01\x00\x00\x00")), types.HashTypeData)
		assert.ErrorIs(t, err, types.ErrScriptNotFound)
	})
}

func TestDelegator(t *testing.T) {
	executor, hasher := newTestExecutor(t, 2)

	var seenArgv []string
	var seenScript *types.Script
	require.NoError(t, executor.RegisterProgram(program("target", func(_ context.Context, env *txiface.ProgramEnv) error {
		seenArgv = env.Argv
		seenScript = env.View.LoadScript()
		if len(env.Argv) > 0 && env.Argv[0] == "reject" {
			return types.ErrWrongWitness
		}
		return nil
	})))
	require.NoError(t, executor.RegisterProgram(program("loop", func(ctx context.Context, env *txiface.ProgramEnv) error {
		return env.Delegator.Exec(ctx, hasher.Blake256(NativeCode("loop")), types.HashTypeData, nil)
	})))

	lock := testutil.CodeScript(types.BytesToHash([]byte("caller")), types.HashTypeData, []byte{0x09})
	rtx := testutil.NewTxBuilder(hasher).
		CellDep(lock, nil, NativeCode("target")).
		CellDep(lock, nil, NativeCode("loop")).
		Input(lock, nil, nil).
		Build()
	view, err := verifier.GroupView(rtx, hasher, verifier.LockGroup, lock)
	require.NoError(t, err)
	delegator := executor.Delegator(view)
	ctx := context.Background()

	t.Run("runs in the caller's view", func(t *testing.T) {
		require.NoError(t, delegator.Exec(ctx, hasher.Blake256(NativeCode("target")), types.HashTypeData, []string{"aa", "0100"}))
		assert.Equal(t, []string{"aa", "0100"}, seenArgv)
		assert.True(t, seenScript.Equal(lock))
	})

	t.Run("rejection is wrapped", func(t *testing.T) {
		err := delegator.Exec(ctx, hasher.Blake256(NativeCode("target")), types.HashTypeData, []string{"reject"})
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrWrongWitness)
		assert.ErrorIs(t, err, types.ErrDelegateRejected)
		se, ok := types.AsScriptError(err)
		require.True(t, ok)
		assert.Equal(t, int8(18), se.Code)
	})

	t.Run("missing delegate", func(t *testing.T) {
		err := delegator.Exec(ctx, types.BytesToHash([]byte("nowhere")), types.HashTypeData, nil)
		assert.ErrorIs(t, err, types.ErrScriptNotFound)
	})

	t.Run("depth limit", func(t *testing.T) {
		err := delegator.Exec(ctx, hasher.Blake256(NativeCode("loop")), types.HashTypeData, nil)
		assert.ErrorIs(t, err, types.ErrDelegateRejected)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		err := delegator.Exec(canceled, hasher.Blake256(NativeCode("target")), types.HashTypeData, nil)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
