package types

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HashLength 哈希/键的字节长度
const HashLength = 32

// Hash 32 字节摘要
//
// 同时用作脚本指纹、注册表实例标识以及区间注册表的键（Key）。
// JSON 编码为 0x 前缀的十六进制字符串。
type Hash [HashLength]byte

// Key 区间注册表的键，按无符号大端字节序全序比较
type Key = Hash

// BytesToHash 将字节切片转换为 Hash，长度不足时右侧补零，超出时截断
func BytesToHash(b []byte) Hash {
	var h Hash
	copy(h[:], b)
	return h
}

// HashFromSlice 严格转换：要求切片长度恰好为 32
func HashFromSlice(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashLength {
		return h, fmt.Errorf("哈希长度无效: got %d, want %d", len(b), HashLength)
	}
	copy(h[:], b)
	return h, nil
}

// Bytes 返回哈希的字节副本
func (h Hash) Bytes() []byte {
	b := make([]byte, HashLength)
	copy(b, h[:])
	return b
}

// Compare 按无符号大端序比较两个键
func (h Hash) Compare(o Hash) int {
	return bytes.Compare(h[:], o[:])
}

// IsZero 是否为全零
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Hex 返回 0x 前缀的十六进制表示
func (h Hash) Hex() string {
	return hexutil.Encode(h[:])
}

// String 实现 fmt.Stringer
func (h Hash) String() string {
	return h.Hex()
}

// Short 返回前 4 字节的短格式，用于日志
func (h Hash) Short() string {
	return hex.EncodeToString(h[:4])
}

// MarshalText 实现 encoding.TextMarshaler
func (h Hash) MarshalText() ([]byte, error) {
	return hexutil.Bytes(h[:]).MarshalText()
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (h *Hash) UnmarshalText(input []byte) error {
	var b hexutil.Bytes
	if err := b.UnmarshalText(input); err != nil {
		return err
	}
	parsed, err := HashFromSlice(b)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
