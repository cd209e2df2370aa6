// Package exec 提供脚本程序的定位、加载与委托执行
//
// 🎯 **核心职责**：
// - 在交易的 cell 依赖中按 (code_hash, hash_type) 定位代码
// - 把代码解析为可执行程序：内置 Go 程序或 WASM 程序
// - 实现委托执行：在同一脚本组视图中以给定 argv 运行另一个程序
//
// 📋 **代码格式**：
// - "weisyn-native:<name>"：内置程序，名称需事先通过 RegisterProgram 注册
// - "\x00asm..."：WASM 模块，在 wazero 沙箱中运行
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	execconfig "github.com/weisyn/rangeregistry/internal/config/exec"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// NativePrefix 内置程序代码 cell 的数据前缀
const NativePrefix = "weisyn-native:"

// wasmMagic WASM 二进制魔数
var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

// 确保 Executor 实现了 txiface.ProgramLoader 接口
var _ txiface.ProgramLoader = (*Executor)(nil)

// Executor 程序加载器与委托执行入口
//
// ⚠️ **核心约束**：
// - 只读取 view 暴露的交易数据，不访问账本
// - 内置程序注册表在启动阶段写入，运行期只读
type Executor struct {
	hasher   crypto.HashManager
	wasm     *WasmRuntime
	logger   log.Logger
	maxDepth int

	mu      sync.RWMutex
	natives map[string]txiface.ScriptProgram
}

// NewExecutor 创建执行器
//
// wasm 可以为 nil，此时 WASM 代码一律视为找不到程序。
func NewExecutor(hasher crypto.HashManager, wasm *WasmRuntime, options *execconfig.ExecOptions, logger log.Logger) *Executor {
	maxDepth := 0
	if options != nil {
		maxDepth = options.MaxExecDepth
	}
	if maxDepth <= 0 {
		maxDepth = 1
	}
	return &Executor{
		hasher:   hasher,
		wasm:     wasm,
		logger:   logger,
		maxDepth: maxDepth,
		natives:  make(map[string]txiface.ScriptProgram),
	}
}

// RegisterProgram 注册内置程序
func (e *Executor) RegisterProgram(program txiface.ScriptProgram) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := program.Name()
	if name == "" {
		return fmt.Errorf("程序名称为空")
	}
	if _, exists := e.natives[name]; exists {
		return fmt.Errorf("程序 %s 已注册", name)
	}
	e.natives[name] = program
	return nil
}

// Programs 已注册的内置程序名称（有序）
func (e *Executor) Programs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.natives))
	for name := range e.natives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NativeCode 内置程序代码 cell 的数据
func NativeCode(name string) []byte {
	return []byte(NativePrefix + name)
}

// Load 实现 txiface.ProgramLoader
func (e *Executor) Load(view txiface.CellView, codeHash types.Hash, hashType types.ScriptHashType) (txiface.ScriptProgram, error) {
	code, err := e.locateCode(view, codeHash, hashType)
	if err != nil {
		return nil, err
	}
	return e.programFromCode(code)
}

// locateCode 按引用方式在 cell 依赖中查找代码
func (e *Executor) locateCode(view txiface.CellView, codeHash types.Hash, hashType types.ScriptHashType) ([]byte, error) {
	for i := 0; ; i++ {
		data, err := view.LoadCellData(i, txiface.SourceCellDep)
		if errors.Is(err, types.ErrIndexOutOfBound) {
			return nil, fmt.Errorf("%w: %s (%s)", types.ErrScriptNotFound, codeHash.Short(), hashType)
		}
		if err != nil {
			return nil, err
		}

		if hashType.IsData() {
			if e.hasher.Blake256(data) == codeHash {
				return data, nil
			}
			continue
		}

		typeHash, err := view.LoadCellTypeHash(i, txiface.SourceCellDep)
		if err != nil {
			return nil, err
		}
		if typeHash != nil && *typeHash == codeHash {
			return data, nil
		}
	}
}

// programFromCode 按代码格式构造程序
func (e *Executor) programFromCode(code []byte) (txiface.ScriptProgram, error) {
	switch {
	case bytes.HasPrefix(code, []byte(NativePrefix)):
		name := string(code[len(NativePrefix):])
		e.mu.RLock()
		program, ok := e.natives[name]
		e.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: 内置程序 %q 未注册", types.ErrScriptNotFound, name)
		}
		return program, nil
	case bytes.HasPrefix(code, wasmMagic):
		if e.wasm == nil {
			return nil, fmt.Errorf("%w: 未启用 WASM 运行时", types.ErrScriptNotFound)
		}
		return e.wasm.Program(context.Background(), code)
	default:
		return nil, fmt.Errorf("%w: 无法识别的代码格式", types.ErrScriptNotFound)
	}
}

// Delegator 实现 txiface.ProgramLoader
func (e *Executor) Delegator(view txiface.CellView) txiface.Delegator {
	return &boundDelegator{executor: e, view: view}
}

// boundDelegator 绑定到脚本组视图的委托执行入口
type boundDelegator struct {
	executor *Executor
	view     txiface.CellView
	depth    int
}

// Exec 定位并在同一视图中运行委托程序
//
// 委托程序的拒绝原因包装在 ErrDelegateRejected 之下，errors.Is 对两者都成立。
func (d *boundDelegator) Exec(ctx context.Context, codeHash types.Hash, hashType types.ScriptHashType, argv []string) error {
	if d.depth >= d.executor.maxDepth {
		return fmt.Errorf("%w: 委托层数超过 %d", types.ErrDelegateRejected, d.executor.maxDepth)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	program, err := d.executor.Load(d.view, codeHash, hashType)
	if err != nil {
		return err
	}

	env := &txiface.ProgramEnv{
		View:      d.view,
		Argv:      append([]string(nil), argv...),
		Delegator: &boundDelegator{executor: d.executor, view: d.view, depth: d.depth + 1},
	}
	if d.executor.logger != nil {
		d.executor.logger.Debugf("委托执行 %s（第 %d 层，argv=%v）", program.Name(), d.depth+1, argv)
	}
	if err := program.Run(ctx, env); err != nil {
		return fmt.Errorf("%w: 程序 %s: %w", types.ErrDelegateRejected, program.Name(), err)
	}
	return nil
}
