package writegate

import (
	"go.uber.org/fx"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	wgif "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/writegate"
)

// ModuleInput 定义 WriteGate 模块的输入依赖
type ModuleInput struct {
	fx.In

	Logger log.Logger `optional:"true"`
}

// ModuleOutput 定义 WriteGate 模块的输出服务
type ModuleOutput struct {
	fx.Out

	WriteGate wgif.WriteGate
}

// Module 返回 WriteGate 模块的 fx.Option
func Module() fx.Option {
	return fx.Module("writegate",
		fx.Provide(ProvideWriteGate),
	)
}

// ProvideWriteGate 提供 WriteGate 实例
func ProvideWriteGate(input ModuleInput) ModuleOutput {
	gate := New()
	if input.Logger != nil {
		input.Logger.Info("✅ WriteGate 模块已加载")
	}
	return ModuleOutput{WriteGate: gate}
}
