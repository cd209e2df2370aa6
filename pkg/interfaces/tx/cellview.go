// Package tx 定义脚本验证的公共契约
//
// 脚本（lock / type 程序）只通过 CellView 读取当前交易，
// 通过 Delegator 把验证权转交给另一个程序。两者都由验证内核按脚本组构造。
package tx

import "github.com/weisyn/rangeregistry/pkg/types"

// Source 读取位置
type Source int

const (
	// SourceInput 按绝对下标读取输入
	SourceInput Source = iota + 1
	// SourceOutput 按绝对下标读取输出
	SourceOutput
	// SourceCellDep 按绝对下标读取 cell 依赖
	SourceCellDep
	// SourceGroupInput 按组内下标读取当前脚本组的输入
	SourceGroupInput
	// SourceGroupOutput 按组内下标读取当前脚本组的输出
	SourceGroupOutput
)

// String 返回文本名称
func (s Source) String() string {
	switch s {
	case SourceInput:
		return "input"
	case SourceOutput:
		return "output"
	case SourceCellDep:
		return "cell_dep"
	case SourceGroupInput:
		return "group_input"
	case SourceGroupOutput:
		return "group_output"
	default:
		return "unknown"
	}
}

// GroupState 当前脚本组在输入侧是否有成员
type GroupState int

const (
	// GroupEmpty 组内没有输入（脚本只出现在输出中）
	GroupEmpty GroupState = iota
	// GroupNonEmpty 组内至少有一个输入
	GroupNonEmpty
)

// CellView 只读的交易访问层
//
// 下标越界返回 types.ErrIndexOutOfBound；位置存在但请求的字段
// 不适用于该来源（例如读取输出的 CellInput）返回 types.ErrItemMissing。
type CellView interface {
	// LoadScript 当前运行的脚本
	LoadScript() *types.Script

	// LoadScriptHash 当前运行脚本的指纹
	LoadScriptHash() types.Hash

	// GroupInputState 当前脚本组输入侧是否为空
	GroupInputState() GroupState

	// LoadCellLock 读取 cell 的 lock 脚本
	LoadCellLock(index int, source Source) (*types.Script, error)

	// LoadCellType 读取 cell 的 type 脚本，没有 type 时返回 nil, nil
	LoadCellType(index int, source Source) (*types.Script, error)

	// LoadCellTypeHash 读取 cell 的 type 脚本指纹，没有 type 时返回 nil, nil
	LoadCellTypeHash(index int, source Source) (*types.Hash, error)

	// LoadCellData 读取 cell 的数据
	LoadCellData(index int, source Source) ([]byte, error)

	// LoadInput 读取交易输入本身（since + previous output）
	LoadInput(index int, source Source) (*types.CellInput, error)

	// LoadWitness 读取见证；组内来源按成员在交易中的绝对位置取见证
	LoadWitness(index int, source Source) ([]byte, error)
}
