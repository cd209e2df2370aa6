// Package testutil 提供 TX 模块测试的辅助工具
//
// 🧪 **测试数据Fixtures**
//
// TxBuilder 以链式调用构造已解析交易：输入、输出、cell 依赖与见证，
// 被消费的 cell 使用确定性的虚构 OutPoint。
package testutil

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/weisyn/rangeregistry/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// DefaultCapacity 测试 cell 的默认容量
const DefaultCapacity = 1000

// NewHasher 创建真实的哈希服务
func NewHasher() crypto.HashManager {
	return hash.NewHashService()
}

// Filled 返回 32 字节且每个字节都为 b 的切片
func Filled(b byte) []byte {
	return bytes.Repeat([]byte{b}, types.HashLength)
}

// KeyWithPrefix 返回以 prefix 开头、其余为 0 的 32 字节键
func KeyWithPrefix(prefix ...byte) []byte {
	key := make([]byte, types.HashLength)
	copy(key, prefix)
	return key
}

// Concat 拼接多段字节
func Concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// CodeScript 创建指向 codeHash 的脚本
func CodeScript(codeHash types.Hash, hashType types.ScriptHashType, args []byte) *types.Script {
	return &types.Script{CodeHash: codeHash, HashType: hashType, Args: args}
}

// NativeCode 内置程序代码 cell 的数据
func NativeCode(name string) []byte {
	return []byte("weisyn-native:" + name)
}

// TxBuilder 构造 ResolvedTransaction
type TxBuilder struct {
	hasher crypto.HashManager
	tx     types.Transaction
	inputs []*types.CellMeta
	deps   []*types.CellMeta
	seq    uint32
}

// NewTxBuilder 创建交易构造器
func NewTxBuilder(hasher crypto.HashManager) *TxBuilder {
	return &TxBuilder{hasher: hasher}
}

// nextOutPoint 生成确定性的虚构 OutPoint
func (b *TxBuilder) nextOutPoint() types.OutPoint {
	b.seq++
	var txHash types.Hash
	txHash[0] = 0xee
	txHash[1] = byte(b.seq >> 8)
	txHash[2] = byte(b.seq)
	return types.OutPoint{TxHash: txHash, Index: b.seq}
}

func newCell(outPoint types.OutPoint, lock, typeScript *types.Script, data []byte) *types.CellMeta {
	return &types.CellMeta{
		OutPoint: outPoint,
		Output: &types.CellOutput{
			Capacity: DefaultCapacity,
			Lock:     lock,
			Type:     typeScript,
		},
		Data: hexutil.Bytes(data),
	}
}

// Input 添加一个被消费的 cell
func (b *TxBuilder) Input(lock, typeScript *types.Script, data []byte) *TxBuilder {
	cell := newCell(b.nextOutPoint(), lock, typeScript, data)
	b.inputs = append(b.inputs, cell)
	b.tx.Inputs = append(b.tx.Inputs, types.CellInput{PreviousOutput: cell.OutPoint})
	return b
}

// InputCell 添加一个已存在的 cell 作为输入
func (b *TxBuilder) InputCell(cell *types.CellMeta) *TxBuilder {
	b.inputs = append(b.inputs, cell)
	b.tx.Inputs = append(b.tx.Inputs, types.CellInput{PreviousOutput: cell.OutPoint})
	return b
}

// Output 添加一个输出
func (b *TxBuilder) Output(lock, typeScript *types.Script, data []byte) *TxBuilder {
	b.tx.Outputs = append(b.tx.Outputs, types.CellOutput{
		Capacity: DefaultCapacity,
		Lock:     lock,
		Type:     typeScript,
	})
	b.tx.OutputsData = append(b.tx.OutputsData, hexutil.Bytes(data))
	return b
}

// CellDep 添加一个只读依赖
func (b *TxBuilder) CellDep(lock, typeScript *types.Script, data []byte) *TxBuilder {
	return b.CellDepCell(newCell(b.nextOutPoint(), lock, typeScript, data))
}

// CellDepCell 添加一个已存在的 cell 作为依赖
func (b *TxBuilder) CellDepCell(cell *types.CellMeta) *TxBuilder {
	b.deps = append(b.deps, cell)
	b.tx.CellDeps = append(b.tx.CellDeps, types.CellDep{OutPoint: cell.OutPoint, DepType: types.DepTypeCode})
	return b
}

// Witness 追加见证
func (b *TxBuilder) Witness(witness []byte) *TxBuilder {
	b.tx.Witnesses = append(b.tx.Witnesses, hexutil.Bytes(witness))
	return b
}

// Transaction 返回当前交易（不含解析信息）
func (b *TxBuilder) Transaction() *types.Transaction {
	tx := b.tx
	return &tx
}

// Build 返回已解析交易，交易哈希由真实哈希服务计算
func (b *TxBuilder) Build() *types.ResolvedTransaction {
	tx := b.Transaction()
	return &types.ResolvedTransaction{
		Hash:             b.hasher.TransactionHash(tx),
		Transaction:      tx,
		ResolvedInputs:   append([]*types.CellMeta(nil), b.inputs...),
		ResolvedCellDeps: append([]*types.CellMeta(nil), b.deps...),
	}
}
