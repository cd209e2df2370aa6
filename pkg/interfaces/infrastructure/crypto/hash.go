// Package crypto 定义哈希计算接口
//
// 账本内所有指纹（脚本哈希、交易哈希、注册表实例标识、代码 cell 数据哈希）
// 都使用 256 位 BLAKE2b，个性化参数为 16 字节 ASCII 字符串 "ckb-default-hash"。
package crypto

import "github.com/weisyn/rangeregistry/pkg/types"

// HashManager 定义哈希计算相关接口
type HashManager interface {
	// Blake256 对 parts 依次拼接后计算个性化 BLAKE2b-256
	Blake256(parts ...[]byte) types.Hash

	// ScriptHash 计算脚本指纹 Hash(serialize(script))
	ScriptHash(script *types.Script) types.Hash

	// TransactionHash 计算交易哈希 Hash(serialize(raw transaction))
	TransactionHash(tx *types.Transaction) types.Hash

	// InstanceID 计算注册表实例标识
	// Hash(serialize(input) ++ le64(outputIndex))
	InstanceID(input *types.CellInput, outputIndex uint64) types.Hash
}
