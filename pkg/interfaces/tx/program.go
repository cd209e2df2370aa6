package tx

import (
	"context"

	"github.com/weisyn/rangeregistry/pkg/types"
)

// ProgramEnv 程序运行环境
type ProgramEnv struct {
	// View 当前脚本组的交易视图
	View CellView
	// Argv 委托执行时传入的参数；作为组脚本直接运行时为空
	Argv []string
	// Delegator 委托执行入口
	Delegator Delegator
}

// ScriptProgram 可执行的脚本程序
//
// Run 返回 nil 表示接受；返回的错误即拒绝原因。
type ScriptProgram interface {
	// Name 程序名称，用于日志与指标
	Name() string

	// Run 在给定环境中运行
	Run(ctx context.Context, env *ProgramEnv) error
}

// Delegator 委托执行
//
// Exec 定位 (codeHash, hashType) 指向的程序并在同一脚本组视图中以 argv 运行它。
// 调用方把 Exec 的结果原样作为自己的结果返回，不再执行后续逻辑。
type Delegator interface {
	Exec(ctx context.Context, codeHash types.Hash, hashType types.ScriptHashType, argv []string) error
}

// ProgramLoader 程序加载器
type ProgramLoader interface {
	// Load 在 view 的 cell 依赖中定位代码并返回可执行程序
	Load(view CellView, codeHash types.Hash, hashType types.ScriptHashType) (ScriptProgram, error)

	// Delegator 返回绑定到 view 的委托执行入口
	Delegator(view CellView) Delegator
}
