package types

import (
	"encoding/binary"
	"fmt"
)

// molecule 编解码辅助函数
//
// 仅覆盖账本所需的结构：struct（定长拼接）、fixvec（计数 + 定长元素）、
// dynvec/table（总长 + 偏移表 + 变长元素）、option（空或元素本身）。
// 字节布局与 CKB 的 molecule 定义保持一致，保证指纹与链上计算结果相同。

const moleculeNumberSize = 4

func packUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func packUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// packBytes 编码 Bytes（fixvec<byte>）
func packBytes(data []byte) []byte {
	out := make([]byte, 0, moleculeNumberSize+len(data))
	out = append(out, packUint32(uint32(len(data)))...)
	return append(out, data...)
}

// packFixVec 编码定长元素向量
func packFixVec(items [][]byte) []byte {
	out := packUint32(uint32(len(items)))
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

// packTable 编码 table，dynvec 与 table 的布局相同
func packTable(fields ...[]byte) []byte {
	headerSize := moleculeNumberSize * (len(fields) + 1)
	total := headerSize
	for _, f := range fields {
		total += len(f)
	}

	out := make([]byte, 0, total)
	out = append(out, packUint32(uint32(total))...)
	offset := headerSize
	for _, f := range fields {
		out = append(out, packUint32(uint32(offset))...)
		offset += len(f)
	}
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}

func readUint32(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data[:4])
}

// unpackTable 严格校验 table 结构并切分字段
//
// compatible=false 时字段数必须与 fieldCount 完全一致；
// compatible=true 时允许出现未知的尾部字段（向前兼容）。
func unpackTable(data []byte, fieldCount int, compatible bool) ([][]byte, error) {
	if len(data) < moleculeNumberSize {
		return nil, fmt.Errorf("%w: table 头部长度不足 (%d)", ErrEncoding, len(data))
	}
	total := int(readUint32(data))
	if total != len(data) {
		return nil, fmt.Errorf("%w: table 总长度不匹配 (header=%d, actual=%d)", ErrEncoding, total, len(data))
	}
	if total == moleculeNumberSize {
		if fieldCount == 0 {
			return [][]byte{}, nil
		}
		return nil, fmt.Errorf("%w: table 缺少字段", ErrEncoding)
	}
	if total < moleculeNumberSize*2 {
		return nil, fmt.Errorf("%w: table 偏移表长度不足", ErrEncoding)
	}

	first := int(readUint32(data[moleculeNumberSize:]))
	if first%moleculeNumberSize != 0 || first < moleculeNumberSize*2 {
		return nil, fmt.Errorf("%w: table 首偏移无效 (%d)", ErrEncoding, first)
	}
	if first > total {
		return nil, fmt.Errorf("%w: table 首偏移越界 (%d)", ErrEncoding, first)
	}
	count := first/moleculeNumberSize - 1
	if count < fieldCount || (!compatible && count > fieldCount) {
		return nil, fmt.Errorf("%w: table 字段数不匹配 (got %d, want %d)", ErrEncoding, count, fieldCount)
	}

	offsets := make([]int, 0, count+1)
	for i := 0; i < count; i++ {
		pos := moleculeNumberSize * (i + 1)
		offsets = append(offsets, int(readUint32(data[pos:])))
	}
	offsets = append(offsets, total)
	for i := 0; i < count; i++ {
		if offsets[i] > offsets[i+1] {
			return nil, fmt.Errorf("%w: table 偏移非递增", ErrEncoding)
		}
	}

	fields := make([][]byte, count)
	for i := 0; i < count; i++ {
		fields[i] = data[offsets[i]:offsets[i+1]]
	}
	return fields[:fieldCount], nil
}

// unpackBytes 严格校验 Bytes（fixvec<byte>）
func unpackBytes(data []byte) ([]byte, error) {
	if len(data) < moleculeNumberSize {
		return nil, fmt.Errorf("%w: Bytes 头部长度不足", ErrEncoding)
	}
	n := int(readUint32(data))
	if moleculeNumberSize+n != len(data) {
		return nil, fmt.Errorf("%w: Bytes 长度不匹配 (header=%d, actual=%d)", ErrEncoding, n, len(data)-moleculeNumberSize)
	}
	out := make([]byte, n)
	copy(out, data[moleculeNumberSize:])
	return out, nil
}

// unpackDynVec 校验 dynvec 并返回元素切片
func unpackDynVec(data []byte) ([][]byte, error) {
	if len(data) < moleculeNumberSize {
		return nil, fmt.Errorf("%w: dynvec 头部长度不足", ErrEncoding)
	}
	if int(readUint32(data)) == moleculeNumberSize && len(data) == moleculeNumberSize {
		return [][]byte{}, nil
	}
	if len(data) < moleculeNumberSize*2 {
		return nil, fmt.Errorf("%w: dynvec 偏移表长度不足", ErrEncoding)
	}
	count := int(readUint32(data[moleculeNumberSize:]))/moleculeNumberSize - 1
	return unpackTable(data, count, false)
}
