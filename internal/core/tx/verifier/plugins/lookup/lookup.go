// Package lookup 实现区间查询的 lock 脚本
//
// 🎯 **核心职责**：证明某个键当前对应的配置值，并把验证权委托给该值指向的程序
//
// 💡 **两种模式**：
// - 外部引用：交易把注册表记录作为只读依赖（cell dep 0）提供，脚本校验该记录
//   覆盖 delegate_key 后委托执行
// - 自更新：交易正在修改注册表记录本身，配置值变化时必须用旧值完成委托执行
//
// 🔒 **脚本参数**（恰好 64 字节）：registry_identity(32) ++ delegate_key(32)
package lookup

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// ProgramName 内置程序名称
const ProgramName = "range_lookup"

const (
	// ArgsSize 脚本参数长度
	ArgsSize = 2 * types.HashLength
	// RecordDataSize 携带配置值的区间记录数据长度：end(32) ++ value(32)
	RecordDataSize = 2 * types.HashLength
	// MinWitnessSize 委托见证最小长度：le16 下标 + 最小 Script
	MinWitnessSize = 2 + types.MinScriptSize
)

// 确保 Plugin 实现了 txiface.ScriptProgram 接口
var _ txiface.ScriptProgram = (*Plugin)(nil)

// Plugin 区间查询验证程序
type Plugin struct {
	hasher crypto.HashManager
}

// New 创建区间查询验证程序
func New(hasher crypto.HashManager) *Plugin {
	return &Plugin{hasher: hasher}
}

// Name 返回插件名称
func (p *Plugin) Name() string {
	return ProgramName
}

// Run 按组内输入是否携带注册表 type 选择模式
func (p *Plugin) Run(ctx context.Context, env *txiface.ProgramEnv) error {
	script := env.View.LoadScript()
	if len(script.Args) != ArgsSize {
		return types.ErrInvalidArgsLength
	}
	registryID := types.BytesToHash(script.Args[:types.HashLength])

	selfUpdate, err := groupHasRegistryInput(env.View, registryID)
	if err != nil {
		return err
	}
	if selfUpdate {
		return p.verifySelfUpdate(ctx, env, script, registryID)
	}
	return p.verifyLookup(ctx, env, script, registryID)
}

// groupHasRegistryInput 组内是否有输入的 type 指纹等于注册表标识
func groupHasRegistryInput(view txiface.CellView, registryID types.Hash) (bool, error) {
	for i := 0; ; i++ {
		typeHash, err := view.LoadCellTypeHash(i, txiface.SourceGroupInput)
		if errors.Is(err, types.ErrIndexOutOfBound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if typeHash != nil && *typeHash == registryID {
			return true, nil
		}
	}
}

// verifyLookup 外部引用：cell dep 0 必须是覆盖 delegate_key 的注册表记录
func (p *Plugin) verifyLookup(ctx context.Context, env *txiface.ProgramEnv, script *types.Script, registryID types.Hash) error {
	view := env.View
	delegateKey := script.Args[types.HashLength:]

	depType, err := view.LoadCellTypeHash(0, txiface.SourceCellDep)
	if err != nil {
		return err
	}
	if depType == nil || *depType != registryID {
		return types.ErrInvalidCellDepTypeScript
	}

	proofLock, err := view.LoadCellLock(0, txiface.SourceCellDep)
	if err != nil {
		return err
	}
	if !proofLock.SameCode(script) || len(proofLock.Args) != ArgsSize {
		return types.ErrInvalidCellDepRef
	}

	data, err := view.LoadCellData(0, txiface.SourceCellDep)
	if err != nil {
		return err
	}
	if len(data) != RecordDataSize {
		return types.ErrInvalidDataLength
	}

	proofStart := proofLock.Args[types.HashLength:]
	proofEnd, proofValue := data[:types.HashLength], data[types.HashLength:]

	switch cmp := bytes.Compare(proofStart, delegateKey); {
	case cmp == 0:
		return p.delegate(ctx, env, proofValue)
	case cmp < 0 && bytes.Compare(proofEnd, delegateKey) >= 0:
		// 键落在记录区间内部时，以键本身作为授权指纹
		return p.delegate(ctx, env, delegateKey)
	default:
		return types.ErrInvalidCellDepRef
	}
}

// verifySelfUpdate 自更新：唯一的注册表输入在同一下标处被相同 lock 的输出替换
func (p *Plugin) verifySelfUpdate(ctx context.Context, env *txiface.ProgramEnv, script *types.Script, registryID types.Hash) error {
	view := env.View

	index := -1
	count := 0
	for i := 0; ; i++ {
		typeHash, err := view.LoadCellTypeHash(i, txiface.SourceInput)
		if errors.Is(err, types.ErrIndexOutOfBound) {
			break
		}
		if err != nil {
			return err
		}
		if typeHash != nil && *typeHash == registryID {
			index = i
			count++
		}
	}
	if count != 1 {
		return types.ErrInvalidInputCount
	}

	outputLock, err := view.LoadCellLock(index, txiface.SourceOutput)
	if err != nil {
		return err
	}
	if !outputLock.Equal(script) {
		return types.ErrInvalidOutputLockScript
	}

	inputData, err := view.LoadCellData(index, txiface.SourceInput)
	if err != nil {
		return err
	}
	outputData, err := view.LoadCellData(index, txiface.SourceOutput)
	if err != nil {
		return err
	}
	if len(inputData) < RecordDataSize || len(outputData) < RecordDataSize {
		return types.ErrInvalidDataLength
	}

	oldValue := inputData[types.HashLength:RecordDataSize]
	if bytes.Equal(oldValue, outputData[types.HashLength:RecordDataSize]) {
		return nil
	}
	return p.delegate(ctx, env, oldValue)
}

// delegate 校验组内见证 0 携带的委托脚本并把验证权交给它
//
// 委托结果即本脚本的结果。
func (p *Plugin) delegate(ctx context.Context, env *txiface.ProgramEnv, token []byte) error {
	witness, err := env.View.LoadWitness(0, txiface.SourceGroupInput)
	if err != nil {
		return err
	}
	script, witnessIndex, err := ParseWitness(witness)
	if err != nil {
		return err
	}

	fingerprint := p.hasher.Blake256(witness[2:])
	if !bytes.Equal(fingerprint.Bytes(), token) {
		return types.ErrInvalidWrappedScriptHash
	}

	if env.Delegator == nil {
		return fmt.Errorf("%w: 未提供委托执行入口", types.ErrDelegateRejected)
	}
	hashType := types.HashTypeFromByte(byte(script.HashType))
	return env.Delegator.Exec(ctx, script.CodeHash, hashType, DelegateArgv(script.Args, witnessIndex))
}

// ParseWitness 解析委托见证：le16 见证下标 ++ 严格编码的 Script
func ParseWitness(witness []byte) (*types.Script, uint16, error) {
	if len(witness) < MinWitnessSize {
		return nil, 0, types.ErrInvalidWitnessFormat
	}
	script, err := types.ParseScript(witness[2:])
	if err != nil {
		return nil, 0, types.ErrInvalidWitnessFormat
	}
	return script, binary.LittleEndian.Uint16(witness[:2]), nil
}

// BuildWitness 构造委托见证
func BuildWitness(witnessIndex uint16, script *types.Script) []byte {
	out := make([]byte, 2, 2+types.MinScriptSize+len(script.Args))
	binary.LittleEndian.PutUint16(out, witnessIndex)
	return append(out, script.Serialize()...)
}

// DelegateArgv 委托程序的参数：hex(args), hex(le16 见证下标)
func DelegateArgv(args []byte, witnessIndex uint16) []string {
	var idx [2]byte
	binary.LittleEndian.PutUint16(idx[:], witnessIndex)
	return []string{hex.EncodeToString(args), hex.EncodeToString(idx[:])}
}

// Args 拼接脚本参数
func Args(registryID types.Hash, key []byte) []byte {
	out := make([]byte, 0, ArgsSize)
	out = append(out, registryID.Bytes()...)
	return append(out, key...)
}
