package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Transaction 完整交易（原始交易 + 见证）
type Transaction struct {
	Version     uint32          `json:"version"`
	CellDeps    []CellDep       `json:"cell_deps"`
	HeaderDeps  []Hash          `json:"header_deps"`
	Inputs      []CellInput     `json:"inputs"`
	Outputs     []CellOutput    `json:"outputs"`
	OutputsData []hexutil.Bytes `json:"outputs_data"`
	Witnesses   []hexutil.Bytes `json:"witnesses"`
}

// SerializeRaw 编码不含见证的原始交易，交易哈希基于此计算
func (tx *Transaction) SerializeRaw() []byte {
	cellDeps := make([][]byte, len(tx.CellDeps))
	for i := range tx.CellDeps {
		cellDeps[i] = tx.CellDeps[i].Serialize()
	}
	headerDeps := make([][]byte, len(tx.HeaderDeps))
	for i := range tx.HeaderDeps {
		headerDeps[i] = tx.HeaderDeps[i].Bytes()
	}
	inputs := make([][]byte, len(tx.Inputs))
	for i := range tx.Inputs {
		inputs[i] = tx.Inputs[i].Serialize()
	}
	outputs := make([][]byte, len(tx.Outputs))
	for i := range tx.Outputs {
		outputs[i] = tx.Outputs[i].Serialize()
	}
	outputsData := make([][]byte, len(tx.OutputsData))
	for i := range tx.OutputsData {
		outputsData[i] = packBytes(tx.OutputsData[i])
	}

	return packTable(
		packUint32(tx.Version),
		packFixVec(cellDeps),
		packFixVec(headerDeps),
		packFixVec(inputs),
		packTable(outputs...),
		packTable(outputsData...),
	)
}

// Validate 基本结构检查
func (tx *Transaction) Validate() error {
	if len(tx.Outputs) != len(tx.OutputsData) {
		return fmt.Errorf("outputs 与 outputs_data 数量不一致: %d != %d", len(tx.Outputs), len(tx.OutputsData))
	}
	for i := range tx.Outputs {
		if tx.Outputs[i].Lock == nil {
			return fmt.Errorf("输出 %d 缺少 lock", i)
		}
	}
	return nil
}

// ResolvedTransaction 已解析依赖的交易
//
// ResolvedInputs 与 Inputs 一一对应，ResolvedCellDeps 与 CellDeps 一一对应。
type ResolvedTransaction struct {
	Hash             Hash
	Transaction      *Transaction
	ResolvedInputs   []*CellMeta
	ResolvedCellDeps []*CellMeta
}

// OutputCell 以 CellMeta 形式返回第 i 个输出
func (rtx *ResolvedTransaction) OutputCell(i int) *CellMeta {
	tx := rtx.Transaction
	return &CellMeta{
		OutPoint: OutPoint{TxHash: rtx.Hash, Index: uint32(i)},
		Output:   &tx.Outputs[i],
		Data:     tx.OutputsData[i],
	}
}
