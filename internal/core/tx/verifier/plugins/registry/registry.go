// Package registry 实现区间注册表的 type 脚本
//
// 🎯 **核心职责**：保证注册表只被合法的区间拆分修改
//
// 区间记录：lock args[0:32] 为起点 start，cell 数据 [0:32] 为终点 end。
// 注册表的全部活 cell 构成键空间上互不重叠的划分。
package registry

import (
	"bytes"
	"context"
	"errors"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// ProgramName 内置程序名称
const ProgramName = "range_registry"

// KeySize 区间边界长度
const KeySize = types.HashLength

// 确保 Plugin 实现了 txiface.ScriptProgram 接口
var _ txiface.ScriptProgram = (*Plugin)(nil)

// Plugin 区间注册表验证程序
//
// ⚠️ **核心约束**：
// - ❌ 插件无状态：每次运行只看当前交易的脚本组
// - ✅ 并发安全：多个 goroutine 可以同时调用
type Plugin struct {
	hasher crypto.HashManager
}

// New 创建注册表验证程序
func New(hasher crypto.HashManager) *Plugin {
	return &Plugin{hasher: hasher}
}

// Name 返回插件名称
func (p *Plugin) Name() string {
	return ProgramName
}

// Run 组内没有输入时为创建，否则为区间修改
func (p *Plugin) Run(_ context.Context, env *txiface.ProgramEnv) error {
	if env.View.GroupInputState() == txiface.GroupEmpty {
		return p.verifyCreation(env.View)
	}
	return VerifyPartition(env.View)
}

// verifyCreation 校验实例标识 = Hash(input 0 ++ le64(首个同 type 输出下标))
func (p *Plugin) verifyCreation(view txiface.CellView) error {
	input, err := view.LoadInput(0, txiface.SourceInput)
	if err != nil {
		return err
	}
	index, err := firstOutputIndex(view)
	if err != nil {
		return err
	}

	expected := p.hasher.InstanceID(input, uint64(index))
	if !bytes.Equal(view.LoadScript().Args, expected.Bytes()) {
		return types.ErrInvalidInitHash
	}
	return nil
}

// firstOutputIndex 从左到右查找 type 指纹等于当前脚本的第一个输出
func firstOutputIndex(view txiface.CellView) (int, error) {
	own := view.LoadScriptHash()
	for i := 0; ; i++ {
		typeHash, err := view.LoadCellTypeHash(i, txiface.SourceOutput)
		if errors.Is(err, types.ErrIndexOutOfBound) {
			return 0, types.ErrItemMissing
		}
		if err != nil {
			return 0, err
		}
		if typeHash != nil && *typeHash == own {
			return i, nil
		}
	}
}

// VerifyPartition 校验组内输出是组内输入区间的有序拆分
//
// 输出游标在所有输入之间共享且只前进；全部输入处理完后游标必须恰好越界。
func VerifyPartition(view txiface.CellView) error {
	cursor := 0
	for i := 0; ; i++ {
		next, err := walkInput(view, i, cursor)
		if errors.Is(err, types.ErrIndexOutOfBound) {
			break
		}
		if err != nil {
			return err
		}
		cursor = next
	}

	if _, err := view.LoadCellLock(cursor, txiface.SourceGroupOutput); !errors.Is(err, types.ErrIndexOutOfBound) {
		return types.ErrInvalidLinkedList
	}
	return nil
}

// walkInput 用从 cursor 开始的输出重建第 i 个组内输入的区间，返回新的游标
//
// 输入不存在时返回 ErrIndexOutOfBound。
func walkInput(view txiface.CellView, i, cursor int) (int, error) {
	start, end, err := loadRecord(view, i, txiface.SourceGroupInput)
	if err != nil {
		return cursor, err
	}

	for {
		// 起点不连续时直接报链表错误，不再读取数据
		outStart, err := loadStart(view, cursor, txiface.SourceGroupOutput)
		if errors.Is(err, types.ErrIndexOutOfBound) {
			return cursor, types.ErrInvalidLinkedList
		}
		if err != nil {
			return cursor, err
		}
		if !bytes.Equal(outStart, start) {
			return cursor, types.ErrInvalidLinkedList
		}
		outEnd, err := loadEnd(view, cursor, txiface.SourceGroupOutput)
		if err != nil {
			return cursor, err
		}
		if bytes.Compare(outEnd, outStart) <= 0 {
			return cursor, types.ErrInvalidLinkedList
		}

		cursor++
		if bytes.Equal(outEnd, end) {
			return cursor, nil
		}
		start = outEnd
	}
}

// loadRecord 读取区间记录的 (start, end)
func loadRecord(view txiface.CellView, index int, source txiface.Source) (start, end []byte, err error) {
	if start, err = loadStart(view, index, source); err != nil {
		return nil, nil, err
	}
	if end, err = loadEnd(view, index, source); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// loadStart 区间起点：lock args 的前 32 字节
func loadStart(view txiface.CellView, index int, source txiface.Source) ([]byte, error) {
	lock, err := view.LoadCellLock(index, source)
	if err != nil {
		return nil, err
	}
	if len(lock.Args) < KeySize {
		return nil, types.ErrInvalidArgsLength
	}
	return lock.Args[:KeySize], nil
}

// loadEnd 区间终点：cell 数据的前 32 字节
func loadEnd(view txiface.CellView, index int, source txiface.Source) ([]byte, error) {
	data, err := view.LoadCellData(index, source)
	if err != nil {
		return nil, err
	}
	if len(data) < KeySize {
		return nil, types.ErrInvalidDataLength
	}
	return data[:KeySize], nil
}
