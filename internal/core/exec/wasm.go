package exec

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	execconfig "github.com/weisyn/rangeregistry/internal/config/exec"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// HostModule 宿主函数所在的模块名
const HostModule = "ckb"

// 宿主函数的错误返回值
const (
	hostIndexOutOfBound int32 = -1
	hostItemMissing     int32 = -2
	hostFault           int32 = -3
)

// envKey 在上下文中携带当前程序环境
type envKey struct{}

// WasmRuntime 基于wazero的WASM脚本运行时
//
// 🎯 **核心职责**：编译并运行 WASM 脚本程序
//
// 📋 **程序约定**：
// - WASI 命令模块，入口为 _start；argv[0] 为程序名，其后为委托参数
// - 通过 proc_exit 退出：0 表示接受，1..18 对应同码的拒绝原因，其他值视为委托拒绝
// - 宿主模块 "ckb" 提供只读的交易访问：
//   - load_witness(ptr, cap, index, source) i32
//   - load_cell_data(ptr, cap, index, source) i32
//   - load_script_args(ptr, cap) i32
//   - debug(ptr, len)
//   读取类函数返回数据完整长度并写入 min(长度, cap) 字节；
//   -1 表示下标越界，-2 表示位置不适用，-3 表示其他错误。
type WasmRuntime struct {
	logger  log.Logger
	runtime wazero.Runtime
	options *execconfig.ExecOptions

	// 进程内编译模块缓存（按字节码 sha256）
	compiledCache sync.Map // map[[32]byte]wazero.CompiledModule
}

// NewWasmRuntime 创建 WASM 运行时并实例化 WASI 与宿主模块
func NewWasmRuntime(ctx context.Context, options *execconfig.ExecOptions, logger log.Logger) (*WasmRuntime, error) {
	if options == nil {
		options = execconfig.New(nil).GetOptions()
	}

	runtimeConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if options.MemoryLimitPages > 0 {
		runtimeConfig = runtimeConfig.WithMemoryLimitPages(options.MemoryLimitPages)
	}
	if options.CompileCache {
		runtimeConfig = runtimeConfig.WithCompilationCache(wazero.NewCompilationCache())
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeConfig)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("WASI模块实例化失败: %w", err)
	}

	r := &WasmRuntime{logger: logger, runtime: rt, options: options}
	if err := r.instantiateHostModule(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return r, nil
}

// instantiateHostModule 注册 "ckb" 宿主函数
//
// 宿主函数从调用上下文中取当前程序环境，不闭包捕获，
// 因此宿主模块只需实例化一次即可服务所有并发执行。
func (r *WasmRuntime) instantiateHostModule(ctx context.Context) error {
	builder := r.runtime.NewHostModuleBuilder(HostModule)

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, ptr, capacity, index, source uint32) int32 {
			env := envFrom(ctx)
			if env == nil {
				return hostFault
			}
			data, err := env.View.LoadWitness(int(index), txiface.Source(source))
			return writeResult(m, ptr, capacity, data, err)
		}).
		Export("load_witness")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, ptr, capacity, index, source uint32) int32 {
			env := envFrom(ctx)
			if env == nil {
				return hostFault
			}
			data, err := env.View.LoadCellData(int(index), txiface.Source(source))
			return writeResult(m, ptr, capacity, data, err)
		}).
		Export("load_cell_data")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, ptr, capacity uint32) int32 {
			env := envFrom(ctx)
			if env == nil {
				return hostFault
			}
			return writeResult(m, ptr, capacity, env.View.LoadScript().Args, nil)
		}).
		Export("load_script_args")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, ptr, length uint32) {
			if r.logger == nil {
				return
			}
			if msg, ok := m.Memory().Read(ptr, length); ok {
				r.logger.Debugf("[wasm] %s", string(msg))
			}
		}).
		Export("debug")

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("宿主模块实例化失败: %w", err)
	}
	return nil
}

func envFrom(ctx context.Context) *txiface.ProgramEnv {
	env, _ := ctx.Value(envKey{}).(*txiface.ProgramEnv)
	return env
}

// writeResult 把读取结果写入 WASM 内存并返回宿主约定的返回值
func writeResult(m api.Module, ptr, capacity uint32, data []byte, err error) int32 {
	switch {
	case errors.Is(err, types.ErrIndexOutOfBound):
		return hostIndexOutOfBound
	case errors.Is(err, types.ErrItemMissing):
		return hostItemMissing
	case err != nil:
		return hostFault
	}

	n := uint32(len(data))
	if n > capacity {
		n = capacity
	}
	if n > 0 && !m.Memory().Write(ptr, data[:n]) {
		return hostFault
	}
	return int32(len(data))
}

// Program 编译 WASM 代码并返回可执行程序
func (r *WasmRuntime) Program(ctx context.Context, code []byte) (txiface.ScriptProgram, error) {
	key := sha256.Sum256(code)
	name := fmt.Sprintf("wasm:%x", key[:4])

	if v, ok := r.compiledCache.Load(key); ok {
		return &wasmProgram{runtime: r, compiled: v.(wazero.CompiledModule), name: name}, nil
	}

	compiled, err := r.runtime.CompileModule(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: wazero编译失败: %v", types.ErrScriptNotFound, err)
	}
	if r.options.CompileCache {
		if existing, loaded := r.compiledCache.LoadOrStore(key, compiled); loaded {
			_ = compiled.Close(ctx)
			compiled = existing.(wazero.CompiledModule)
		}
	}

	if r.logger != nil {
		for _, def := range compiled.ImportedFunctions() {
			moduleName, funcName, _ := def.Import()
			r.logger.Debugf("%s 导入 [%s] %s", name, moduleName, funcName)
		}
	}
	return &wasmProgram{runtime: r, compiled: compiled, name: name, owned: !r.options.CompileCache}, nil
}

// Close 关闭运行时，释放所有编译结果
func (r *WasmRuntime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// wasmProgram 已编译的 WASM 脚本程序
//
// 未进入编译缓存的程序只运行一次，运行结束即释放编译结果。
type wasmProgram struct {
	runtime  *WasmRuntime
	compiled wazero.CompiledModule
	name     string
	owned    bool
	released bool
}

func (p *wasmProgram) Name() string {
	return p.name
}

// Run 以匿名模块实例化并运行 _start
func (p *wasmProgram) Run(ctx context.Context, env *txiface.ProgramEnv) error {
	if p.released {
		return fmt.Errorf("%w: %s 的编译结果已释放", types.ErrScriptNotFound, p.name)
	}
	if p.owned {
		defer func() {
			_ = p.compiled.Close(context.Background())
			p.released = true
		}()
	}

	ctx = context.WithValue(ctx, envKey{}, env)
	if timeout := p.runtime.options.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := append([]string{p.name}, env.Argv...)
	config := wazero.NewModuleConfig().
		WithName("").
		WithArgs(args...).
		WithStartFunctions("_start")

	mod, err := p.runtime.runtime.InstantiateModule(ctx, p.compiled, config)
	if mod != nil {
		_ = mod.Close(ctx)
	}
	if err == nil {
		return nil
	}

	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code == 0 {
			return nil
		}
		if code <= 127 {
			if se, ok := types.ScriptErrorByCode(int8(code)); ok {
				return fmt.Errorf("%w: %s 退出码 %d", se, p.name, code)
			}
		}
		return fmt.Errorf("%w: %s 退出码 %d", types.ErrDelegateRejected, p.name, code)
	}
	return fmt.Errorf("%w: %s 执行失败: %v", types.ErrDelegateRejected, p.name, err)
}
