// Package demo 提供用于委托执行演示与测试的内置程序
package demo

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"

	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
	"github.com/weisyn/rangeregistry/pkg/types"
)

const (
	// ReversedWitnessName 见证反转校验程序
	ReversedWitnessName = "reversed_witness"
	// AlwaysSuccessName 总是接受的程序
	AlwaysSuccessName = "always_success"
)

// ReversedWitness 要求见证逆序后等于脚本参数
//
// 直接作为组脚本运行时读取自身 args 与组内见证 0；
// 被委托执行时 argv = [hex(args), hex(le16 见证下标)]，按绝对输入下标读取见证。
type ReversedWitness struct{}

// Name 返回程序名称
func (ReversedWitness) Name() string { return ReversedWitnessName }

// Run 实现 txiface.ScriptProgram
func (ReversedWitness) Run(_ context.Context, env *txiface.ProgramEnv) error {
	args, witness, err := loadArgsAndWitness(env)
	if err != nil {
		return err
	}
	reversed := make([]byte, len(witness))
	for i, b := range witness {
		reversed[len(witness)-1-i] = b
	}
	if !bytes.Equal(args, reversed) {
		return types.ErrWrongWitness
	}
	return nil
}

func loadArgsAndWitness(env *txiface.ProgramEnv) ([]byte, []byte, error) {
	switch len(env.Argv) {
	case 0:
		witness, err := env.View.LoadWitness(0, txiface.SourceGroupInput)
		if err != nil {
			return nil, nil, err
		}
		return env.View.LoadScript().Args, witness, nil
	case 2:
		args, err := hex.DecodeString(env.Argv[0])
		if err != nil {
			return nil, nil, types.ErrEncoding
		}
		idx, err := hex.DecodeString(env.Argv[1])
		if err != nil || len(idx) != 2 {
			return nil, nil, types.ErrEncoding
		}
		witness, err := env.View.LoadWitness(int(binary.LittleEndian.Uint16(idx)), txiface.SourceInput)
		if err != nil {
			return nil, nil, err
		}
		return args, witness, nil
	default:
		return nil, nil, types.ErrWrongArgv
	}
}

// AlwaysSuccess 无条件接受
type AlwaysSuccess struct{}

// Name 返回程序名称
func (AlwaysSuccess) Name() string { return AlwaysSuccessName }

// Run 实现 txiface.ScriptProgram
func (AlwaysSuccess) Run(context.Context, *txiface.ProgramEnv) error { return nil }
