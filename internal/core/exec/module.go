package exec

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/weisyn/rangeregistry/pkg/interfaces/config"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
)

// ModuleParams 定义执行模块的依赖参数
type ModuleParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Provider    config.Provider
	HashManager crypto.HashManager
	Logger      log.Logger `optional:"true"`
}

// ModuleOutput 定义执行模块的输出结构
type ModuleOutput struct {
	fx.Out

	Executor *Executor
	Loader   txiface.ProgramLoader
}

// Module 返回脚本执行模块
func Module() fx.Option {
	return fx.Module("exec",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建 WASM 运行时与执行器，并在应用停止时关闭运行时
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	var logger log.Logger
	if params.Logger != nil {
		logger = params.Logger.With("module", "exec")
	}

	options := params.Provider.GetExec()
	wasm, err := NewWasmRuntime(context.Background(), options, logger)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("创建WASM运行时失败: %w", err)
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return wasm.Close(ctx)
		},
	})

	executor := NewExecutor(params.HashManager, wasm, options, logger)
	if logger != nil {
		logger.Infof("脚本执行器已创建（超时=%s，内存页上限=%d，委托层数上限=%d）",
			options.Timeout, options.MemoryLimitPages, options.MaxExecDepth)
	}
	return ModuleOutput{Executor: executor, Loader: executor}, nil
}
