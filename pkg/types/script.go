package types

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ScriptHashType 脚本代码引用方式
type ScriptHashType byte

const (
	// HashTypeData 按代码 cell 数据哈希引用
	HashTypeData ScriptHashType = 0
	// HashTypeType 按代码 cell 的 type script 哈希引用
	HashTypeType ScriptHashType = 1
	// HashTypeData1 按数据哈希引用（VM v1）
	HashTypeData1 ScriptHashType = 2
	// HashTypeData2 按数据哈希引用（VM v2）
	HashTypeData2 ScriptHashType = 4
)

// MinScriptSize 最小的合法 Script 序列化长度（args 为空）
//
// 头部 4 + 三个偏移 12 + code_hash 32 + hash_type 1 + args 长度前缀 4
const MinScriptSize = 53

// HashTypeFromByte 按字节还原代码引用方式
//
// 只有 1 表示按 type 引用，其余取值一律按数据哈希处理。
func HashTypeFromByte(b byte) ScriptHashType {
	if b == byte(HashTypeType) {
		return HashTypeType
	}
	return HashTypeData
}

// IsData 是否按数据哈希引用
func (t ScriptHashType) IsData() bool {
	return t != HashTypeType
}

// String 返回文本名称
func (t ScriptHashType) String() string {
	switch t {
	case HashTypeData:
		return "data"
	case HashTypeType:
		return "type"
	case HashTypeData1:
		return "data1"
	case HashTypeData2:
		return "data2"
	default:
		return fmt.Sprintf("0x%02x", byte(t))
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (t ScriptHashType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (t *ScriptHashType) UnmarshalText(input []byte) error {
	switch strings.ToLower(string(input)) {
	case "data":
		*t = HashTypeData
	case "type":
		*t = HashTypeType
	case "data1":
		*t = HashTypeData1
	case "data2":
		*t = HashTypeData2
	default:
		return fmt.Errorf("未知的 hash_type: %q", string(input))
	}
	return nil
}

// Script 脚本描述（代码引用 + 引用方式 + 参数）
type Script struct {
	CodeHash Hash           `json:"code_hash"`
	HashType ScriptHashType `json:"hash_type"`
	Args     hexutil.Bytes  `json:"args"`
}

// Serialize 按 molecule table 编码
func (s *Script) Serialize() []byte {
	return packTable(
		s.CodeHash.Bytes(),
		[]byte{byte(s.HashType)},
		packBytes(s.Args),
	)
}

// Equal 序列化字节完全一致
func (s *Script) Equal(other *Script) bool {
	if s == nil || other == nil {
		return s == other
	}
	return bytes.Equal(s.Serialize(), other.Serialize())
}

// SameCode 代码引用与引用方式一致（忽略参数）
func (s *Script) SameCode(other *Script) bool {
	if s == nil || other == nil {
		return false
	}
	return s.CodeHash == other.CodeHash && s.HashType == other.HashType
}

// Clone 深拷贝
func (s *Script) Clone() *Script {
	if s == nil {
		return nil
	}
	args := make([]byte, len(s.Args))
	copy(args, s.Args)
	return &Script{CodeHash: s.CodeHash, HashType: s.HashType, Args: args}
}

// VerifyScript 严格校验 Script 的 molecule 结构
//
// 字段数必须为 3（compatible 时允许尾部扩展字段），code_hash 恰好 32 字节，
// hash_type 恰好 1 字节，args 为合法 Bytes，不允许多余字节。
func VerifyScript(data []byte, compatible bool) error {
	fields, err := unpackTable(data, 3, compatible)
	if err != nil {
		return err
	}
	if len(fields[0]) != HashLength {
		return fmt.Errorf("%w: code_hash 长度 %d", ErrEncoding, len(fields[0]))
	}
	if len(fields[1]) != 1 {
		return fmt.Errorf("%w: hash_type 长度 %d", ErrEncoding, len(fields[1]))
	}
	if _, err := unpackBytes(fields[2]); err != nil {
		return err
	}
	return nil
}

// ParseScript 严格解码 Script
func ParseScript(data []byte) (*Script, error) {
	if err := VerifyScript(data, false); err != nil {
		return nil, err
	}
	fields, _ := unpackTable(data, 3, false)
	args, _ := unpackBytes(fields[2])
	return &Script{
		CodeHash: BytesToHash(fields[0]),
		HashType: ScriptHashType(fields[1][0]),
		Args:     args,
	}, nil
}

// serializeScriptOpt 编码 ScriptOpt（None 为空字节）
func serializeScriptOpt(s *Script) []byte {
	if s == nil {
		return []byte{}
	}
	return s.Serialize()
}

func parseScriptOpt(data []byte) (*Script, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return ParseScript(data)
}
