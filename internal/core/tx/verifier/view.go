// Package verifier 提供交易验证微内核实现
//
// view.go: 脚本组视图（CellView 实现）
package verifier

import (
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// 确保 txView 实现了 txiface.CellView 接口
var _ txiface.CellView = (*txView)(nil)

// txView 绑定到一个脚本组的只读交易视图
type txView struct {
	rtx    *types.ResolvedTransaction
	group  *ScriptGroup
	hasher crypto.HashManager
}

// NewView 创建脚本组视图
func NewView(rtx *types.ResolvedTransaction, group *ScriptGroup, hasher crypto.HashManager) txiface.CellView {
	return &txView{rtx: rtx, group: group, hasher: hasher}
}

// GroupView 查找脚本组并创建视图
func GroupView(rtx *types.ResolvedTransaction, hasher crypto.HashManager, gt GroupType, script *types.Script) (txiface.CellView, error) {
	group, err := FindScriptGroup(rtx, hasher, gt, script)
	if err != nil {
		return nil, err
	}
	return NewView(rtx, group, hasher), nil
}

func (v *txView) LoadScript() *types.Script {
	return v.group.Script.Clone()
}

func (v *txView) LoadScriptHash() types.Hash {
	return v.group.Hash
}

func (v *txView) GroupInputState() txiface.GroupState {
	if len(v.group.InputIndices) == 0 {
		return txiface.GroupEmpty
	}
	return txiface.GroupNonEmpty
}

// absolute 把 (index, source) 换算为绝对下标
func (v *txView) absolute(index int, source txiface.Source) (int, error) {
	if index < 0 {
		return 0, types.ErrIndexOutOfBound
	}
	var limit int
	switch source {
	case txiface.SourceInput:
		limit = len(v.rtx.ResolvedInputs)
	case txiface.SourceOutput:
		limit = len(v.rtx.Transaction.Outputs)
	case txiface.SourceCellDep:
		limit = len(v.rtx.ResolvedCellDeps)
	case txiface.SourceGroupInput:
		if index >= len(v.group.InputIndices) {
			return 0, types.ErrIndexOutOfBound
		}
		return v.group.InputIndices[index], nil
	case txiface.SourceGroupOutput:
		if index >= len(v.group.OutputIndices) {
			return 0, types.ErrIndexOutOfBound
		}
		return v.group.OutputIndices[index], nil
	default:
		return 0, types.ErrIndexOutOfBound
	}
	if index >= limit {
		return 0, types.ErrIndexOutOfBound
	}
	return index, nil
}

// cell 读取 cell 元信息
func (v *txView) cell(index int, source txiface.Source) (*types.CellMeta, error) {
	abs, err := v.absolute(index, source)
	if err != nil {
		return nil, err
	}
	switch source {
	case txiface.SourceInput, txiface.SourceGroupInput:
		return v.rtx.ResolvedInputs[abs], nil
	case txiface.SourceCellDep:
		return v.rtx.ResolvedCellDeps[abs], nil
	default:
		return v.rtx.OutputCell(abs), nil
	}
}

func (v *txView) LoadCellLock(index int, source txiface.Source) (*types.Script, error) {
	cell, err := v.cell(index, source)
	if err != nil {
		return nil, err
	}
	return cell.Output.Lock.Clone(), nil
}

func (v *txView) LoadCellType(index int, source txiface.Source) (*types.Script, error) {
	cell, err := v.cell(index, source)
	if err != nil {
		return nil, err
	}
	return cell.Output.Type.Clone(), nil
}

func (v *txView) LoadCellTypeHash(index int, source txiface.Source) (*types.Hash, error) {
	cell, err := v.cell(index, source)
	if err != nil {
		return nil, err
	}
	if cell.Output.Type == nil {
		return nil, nil
	}
	h := v.hasher.ScriptHash(cell.Output.Type)
	return &h, nil
}

func (v *txView) LoadCellData(index int, source txiface.Source) ([]byte, error) {
	cell, err := v.cell(index, source)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(cell.Data))
	copy(data, cell.Data)
	return data, nil
}

func (v *txView) LoadInput(index int, source txiface.Source) (*types.CellInput, error) {
	abs, err := v.absolute(index, source)
	if err != nil {
		return nil, err
	}
	if source != txiface.SourceInput && source != txiface.SourceGroupInput {
		return nil, types.ErrItemMissing
	}
	input := v.rtx.Transaction.Inputs[abs]
	return &input, nil
}

// LoadWitness 见证与输入/输出按绝对下标对应，组内来源先换算为绝对下标
func (v *txView) LoadWitness(index int, source txiface.Source) ([]byte, error) {
	var abs int
	switch source {
	case txiface.SourceInput, txiface.SourceOutput:
		if index < 0 {
			return nil, types.ErrIndexOutOfBound
		}
		abs = index
	case txiface.SourceGroupInput, txiface.SourceGroupOutput:
		var err error
		if abs, err = v.absolute(index, source); err != nil {
			return nil, err
		}
	case txiface.SourceCellDep:
		return nil, types.ErrItemMissing
	default:
		return nil, types.ErrIndexOutOfBound
	}

	witnesses := v.rtx.Transaction.Witnesses
	if abs >= len(witnesses) {
		return nil, types.ErrIndexOutOfBound
	}
	out := make([]byte, len(witnesses[abs]))
	copy(out, witnesses[abs])
	return out, nil
}
