// Package verifier 提供交易验证微内核实现
//
// group.go: 脚本分组
package verifier

import (
	"errors"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// ErrGroupNotFound 交易中不存在指定脚本组
var ErrGroupNotFound = errors.New("脚本组不存在")

// GroupType 脚本组类型
type GroupType int

const (
	// LockGroup 由输入的 lock 脚本组成
	LockGroup GroupType = iota
	// TypeGroup 由输入与输出的 type 脚本组成
	TypeGroup
)

// String 返回文本名称
func (t GroupType) String() string {
	if t == LockGroup {
		return "lock"
	}
	return "type"
}

// ScriptGroup 同一指纹的脚本在交易中的全部出现位置
//
// InputIndices / OutputIndices 为绝对下标，按出现顺序排列。
type ScriptGroup struct {
	Type          GroupType
	Script        *types.Script
	Hash          types.Hash
	InputIndices  []int
	OutputIndices []int
}

// BuildScriptGroups 按指纹对交易脚本分组
//
// lock 组只覆盖输入；type 组覆盖输入与输出。
// 返回顺序：先 lock 组，后 type 组，组内按首次出现排序。
func BuildScriptGroups(rtx *types.ResolvedTransaction, hasher crypto.HashManager) []*ScriptGroup {
	var lockGroups, typeGroups []*ScriptGroup
	lockIndex := make(map[types.Hash]*ScriptGroup)
	typeIndex := make(map[types.Hash]*ScriptGroup)

	group := func(index map[types.Hash]*ScriptGroup, list *[]*ScriptGroup, gt GroupType, script *types.Script) *ScriptGroup {
		h := hasher.ScriptHash(script)
		if g, ok := index[h]; ok {
			return g
		}
		g := &ScriptGroup{Type: gt, Script: script, Hash: h}
		index[h] = g
		*list = append(*list, g)
		return g
	}

	for i, cell := range rtx.ResolvedInputs {
		g := group(lockIndex, &lockGroups, LockGroup, cell.Output.Lock)
		g.InputIndices = append(g.InputIndices, i)
	}
	for i, cell := range rtx.ResolvedInputs {
		if cell.Output.Type == nil {
			continue
		}
		g := group(typeIndex, &typeGroups, TypeGroup, cell.Output.Type)
		g.InputIndices = append(g.InputIndices, i)
	}
	for i := range rtx.Transaction.Outputs {
		typeScript := rtx.Transaction.Outputs[i].Type
		if typeScript == nil {
			continue
		}
		g := group(typeIndex, &typeGroups, TypeGroup, typeScript)
		g.OutputIndices = append(g.OutputIndices, i)
	}

	return append(lockGroups, typeGroups...)
}

// FindScriptGroup 查找指定脚本所在的组
func FindScriptGroup(rtx *types.ResolvedTransaction, hasher crypto.HashManager, gt GroupType, script *types.Script) (*ScriptGroup, error) {
	h := hasher.ScriptHash(script)
	for _, g := range BuildScriptGroups(rtx, hasher) {
		if g.Type == gt && g.Hash == h {
			return g, nil
		}
	}
	return nil, ErrGroupNotFound
}
