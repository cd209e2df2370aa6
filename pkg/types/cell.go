package types

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// OutPoint 指向某笔交易的某个输出
type OutPoint struct {
	TxHash Hash   `json:"tx_hash"`
	Index  uint32 `json:"index"`
}

// outPointSize tx_hash 32 + index 4
const outPointSize = HashLength + 4

// Serialize 按 molecule struct 编码
func (o OutPoint) Serialize() []byte {
	out := make([]byte, 0, outPointSize)
	out = append(out, o.TxHash[:]...)
	return append(out, packUint32(o.Index)...)
}

// String 实现 fmt.Stringer
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxHash.Hex(), o.Index)
}

// ParseOutPoint 解码 OutPoint
func ParseOutPoint(data []byte) (OutPoint, error) {
	if len(data) != outPointSize {
		return OutPoint{}, fmt.Errorf("%w: OutPoint 长度 %d", ErrEncoding, len(data))
	}
	return OutPoint{
		TxHash: BytesToHash(data[:HashLength]),
		Index:  binary.LittleEndian.Uint32(data[HashLength:]),
	}, nil
}

// CellInput 交易输入（since + 被消费的输出）
type CellInput struct {
	Since          hexutil.Uint64 `json:"since"`
	PreviousOutput OutPoint       `json:"previous_output"`
}

// Serialize 按 molecule struct 编码（44 字节）
func (in *CellInput) Serialize() []byte {
	out := make([]byte, 0, 8+outPointSize)
	out = append(out, packUint64(uint64(in.Since))...)
	return append(out, in.PreviousOutput.Serialize()...)
}

// CellOutput 交易输出（容量、lock、可选 type）
type CellOutput struct {
	Capacity hexutil.Uint64 `json:"capacity"`
	Lock     *Script        `json:"lock"`
	Type     *Script        `json:"type,omitempty"`
}

// Serialize 按 molecule table 编码
func (c *CellOutput) Serialize() []byte {
	lock := c.Lock
	if lock == nil {
		lock = &Script{}
	}
	return packTable(
		packUint64(uint64(c.Capacity)),
		lock.Serialize(),
		serializeScriptOpt(c.Type),
	)
}

// ParseCellOutput 严格解码 CellOutput
func ParseCellOutput(data []byte) (*CellOutput, error) {
	fields, err := unpackTable(data, 3, false)
	if err != nil {
		return nil, err
	}
	if len(fields[0]) != 8 {
		return nil, fmt.Errorf("%w: capacity 长度 %d", ErrEncoding, len(fields[0]))
	}
	lock, err := ParseScript(fields[1])
	if err != nil {
		return nil, fmt.Errorf("解析 lock 失败: %w", err)
	}
	typeScript, err := parseScriptOpt(fields[2])
	if err != nil {
		return nil, fmt.Errorf("解析 type 失败: %w", err)
	}
	return &CellOutput{
		Capacity: hexutil.Uint64(binary.LittleEndian.Uint64(fields[0])),
		Lock:     lock,
		Type:     typeScript,
	}, nil
}

// DepType 依赖 cell 类型
type DepType byte

const (
	// DepTypeCode 直接引用代码 cell
	DepTypeCode DepType = 0
	// DepTypeDepGroup 依赖组（当前不支持解析）
	DepTypeDepGroup DepType = 1
)

// String 返回文本名称
func (d DepType) String() string {
	switch d {
	case DepTypeCode:
		return "code"
	case DepTypeDepGroup:
		return "dep_group"
	default:
		return fmt.Sprintf("0x%02x", byte(d))
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (d DepType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (d *DepType) UnmarshalText(input []byte) error {
	switch string(input) {
	case "code":
		*d = DepTypeCode
	case "dep_group":
		*d = DepTypeDepGroup
	default:
		return fmt.Errorf("未知的 dep_type: %q", string(input))
	}
	return nil
}

// CellDep 交易的只读依赖
type CellDep struct {
	OutPoint OutPoint `json:"out_point"`
	DepType  DepType  `json:"dep_type"`
}

// Serialize 按 molecule struct 编码（37 字节）
func (d *CellDep) Serialize() []byte {
	out := make([]byte, 0, outPointSize+1)
	out = append(out, d.OutPoint.Serialize()...)
	return append(out, byte(d.DepType))
}

// CellMeta 已解析的活 cell（输出 + 数据 + 位置）
type CellMeta struct {
	OutPoint OutPoint      `json:"out_point"`
	Output   *CellOutput   `json:"output"`
	Data     hexutil.Bytes `json:"data"`
}

// SerializeEntry 编码存储记录：dynvec [CellOutput, Bytes(data)]
func (m *CellMeta) SerializeEntry() []byte {
	return packTable(m.Output.Serialize(), packBytes(m.Data))
}

// ParseCellEntry 解码存储记录
func ParseCellEntry(outPoint OutPoint, entry []byte) (*CellMeta, error) {
	fields, err := unpackTable(entry, 2, false)
	if err != nil {
		return nil, err
	}
	output, err := ParseCellOutput(fields[0])
	if err != nil {
		return nil, err
	}
	data, err := unpackBytes(fields[1])
	if err != nil {
		return nil, err
	}
	return &CellMeta{OutPoint: outPoint, Output: output, Data: data}, nil
}
