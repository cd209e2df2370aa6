// Package tx 提供脚本验证模块
//
// 📦 **模块组织**：
// - verifier/          - 验证微内核（脚本分组 + 组视图 + 并行验证）
// - verifier/plugins/  - 内置脚本程序（区间注册表、区间查询、演示程序）
// - testutil/          - 测试辅助工具
//
// 🔗 **依赖关系**：
// - exec.Executor：程序加载与委托执行，内置程序在启动时注册到这里
// - crypto.HashManager：脚本指纹与实例标识
// - metrics.Recorder：脚本组验证指标
package tx

import (
	"fmt"

	"go.uber.org/fx"

	"github.com/weisyn/rangeregistry/internal/core/exec"
	"github.com/weisyn/rangeregistry/internal/core/tx/verifier"
	"github.com/weisyn/rangeregistry/internal/core/tx/verifier/plugins/demo"
	"github.com/weisyn/rangeregistry/internal/core/tx/verifier/plugins/lookup"
	"github.com/weisyn/rangeregistry/internal/core/tx/verifier/plugins/registry"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/metrics"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
)

// ModuleInput 定义交易模块的输入依赖
type ModuleInput struct {
	fx.In

	Logger      log.Logger            `optional:"true"`
	HashManager crypto.HashManager    `optional:"false"`
	Loader      txiface.ProgramLoader `optional:"false"`
	Recorder    metrics.Recorder      `optional:"true"`
}

// ModuleOutput 定义 tx 模块的输出服务
type ModuleOutput struct {
	fx.Out

	Kernel     *verifier.Kernel
	TxVerifier txiface.TxVerifier
}

// Module 返回脚本验证模块
func Module() fx.Option {
	return fx.Module("tx",
		fx.Provide(
			func(input ModuleInput) ModuleOutput {
				var txLogger log.Logger
				if input.Logger != nil {
					txLogger = input.Logger.With("module", "verifier")
				}
				kernel := verifier.NewKernel(input.Loader, input.HashManager, input.Recorder, txLogger)
				return ModuleOutput{Kernel: kernel, TxVerifier: kernel}
			},
		),

		fx.Invoke(registerVerificationPlugins),

		fx.Invoke(func(logger log.Logger) {
			if logger != nil {
				logger.With("module", "tx").Info("✅ 脚本验证模块已加载完成")
			}
		}),
	)
}

// BuiltinPrograms 全部内置程序
func BuiltinPrograms(hasher crypto.HashManager) []txiface.ScriptProgram {
	return []txiface.ScriptProgram{
		registry.New(hasher),
		lookup.New(hasher),
		demo.ReversedWitness{},
		demo.AlwaysSuccess{},
	}
}

// RegisterBuiltinPrograms 把全部内置程序注册到执行器
//
// 注册后，代码 cell 数据为 "weisyn-native:<name>" 的脚本即可被定位并运行。
func RegisterBuiltinPrograms(executor *exec.Executor, hasher crypto.HashManager, logger log.Logger) error {
	for _, program := range BuiltinPrograms(hasher) {
		if err := executor.RegisterProgram(program); err != nil {
			return fmt.Errorf("注册内置程序 %s 失败: %w", program.Name(), err)
		}
		if logger != nil {
			logger.Infof("[TX Module] ✅ 注册内置程序: %s", program.Name())
		}
	}
	return nil
}

func registerVerificationPlugins(executor *exec.Executor, hasher crypto.HashManager, logger log.Logger) error {
	return RegisterBuiltinPrograms(executor, hasher, logger)
}
