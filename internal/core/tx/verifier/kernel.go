// Package verifier 提供交易验证微内核实现
//
// kernel.go: 验证微内核（Verifier Kernel）
package verifier

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/metrics"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// 确保 Kernel 实现了 txiface.TxVerifier 接口
var _ txiface.TxVerifier = (*Kernel)(nil)

// GroupError 某个脚本组拒绝了交易
//
// Unwrap 返回程序给出的原始拒绝原因，调用方可用 errors.Is 匹配。
type GroupError struct {
	Type       GroupType
	ScriptHash types.Hash
	Program    string
	Err        error
}

// Error 实现 error 接口
func (e *GroupError) Error() string {
	return fmt.Sprintf("%s 脚本组 %s（程序 %s）验证失败: %v", e.Type, e.ScriptHash.Short(), e.Program, e.Err)
}

// Unwrap 返回拒绝原因
func (e *GroupError) Unwrap() error {
	return e.Err
}

// Kernel 验证微内核
//
// 🎯 **核心职责**：把交易的脚本分组，逐组定位程序并运行
//
// ⚠️ **核心约束**：
// - 任何一个脚本组拒绝，整个交易拒绝
// - 验证过程无副作用（不修改交易、不消费 cell）
// - 各组之间没有共享状态，可并行执行
type Kernel struct {
	loader   txiface.ProgramLoader
	hasher   crypto.HashManager
	recorder metrics.Recorder
	logger   log.Logger

	// 单笔交易内并行验证的脚本组上限
	concurrency int
}

// NewKernel 创建新的 Verifier Kernel
func NewKernel(loader txiface.ProgramLoader, hasher crypto.HashManager, recorder metrics.Recorder, logger log.Logger) *Kernel {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Kernel{
		loader:      loader,
		hasher:      hasher,
		recorder:    recorder,
		logger:      logger,
		concurrency: runtime.GOMAXPROCS(0),
	}
}

// Verify 验证已解析的交易
func (k *Kernel) Verify(ctx context.Context, rtx *types.ResolvedTransaction) error {
	if err := checkResolved(rtx); err != nil {
		return err
	}

	groups := BuildScriptGroups(rtx, k.hasher)
	k.logger.Debugf("开始验证交易 %s，脚本组数=%d", rtx.Hash.Short(), len(groups))

	// 各组独立运行到底，按组顺序取第一个错误，拒绝原因与调度无关
	errs := make([]error, len(groups))
	var g errgroup.Group
	g.SetLimit(k.concurrency)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			errs[i] = k.verifyGroup(ctx, rtx, group)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			k.logger.Infof("交易 %s 被拒绝: %v", rtx.Hash.Short(), err)
			return err
		}
	}
	return nil
}

// verifyGroup 定位并运行单个脚本组的程序
func (k *Kernel) verifyGroup(ctx context.Context, rtx *types.ResolvedTransaction, group *ScriptGroup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	view := NewView(rtx, group, k.hasher)

	program, err := k.loader.Load(view, group.Script.CodeHash, group.Script.HashType)
	if err != nil {
		k.recorder.ObserveGroup("unresolved", metrics.ResultRejected, time.Since(start))
		return &GroupError{Type: group.Type, ScriptHash: group.Hash, Program: "unresolved", Err: err}
	}

	env := &txiface.ProgramEnv{
		View:      view,
		Delegator: k.loader.Delegator(view),
	}
	err = program.Run(ctx, env)
	elapsed := time.Since(start)

	if err != nil {
		k.recorder.ObserveGroup(program.Name(), metrics.ResultRejected, elapsed)
		return &GroupError{Type: group.Type, ScriptHash: group.Hash, Program: program.Name(), Err: err}
	}

	k.recorder.ObserveGroup(program.Name(), metrics.ResultAccepted, elapsed)
	k.logger.Debugf("%s 脚本组 %s 通过（程序 %s，输入 %d，输出 %d，耗时 %s）",
		group.Type, group.Hash.Short(), program.Name(), len(group.InputIndices), len(group.OutputIndices), elapsed)
	return nil
}

// VerifyBatch 批量验证多个交易
//
// 结果与输入一一对应（nil 表示通过），单笔失败不影响其他交易。
func (k *Kernel) VerifyBatch(ctx context.Context, rtxs []*types.ResolvedTransaction) []error {
	results := make([]error, len(rtxs))

	var g errgroup.Group
	g.SetLimit(k.concurrency)
	for i, rtx := range rtxs {
		i, rtx := i, rtx
		g.Go(func() error {
			results[i] = k.Verify(ctx, rtx)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// checkResolved 检查解析结果与交易结构一致
func checkResolved(rtx *types.ResolvedTransaction) error {
	if rtx == nil || rtx.Transaction == nil {
		return fmt.Errorf("交易为空")
	}
	tx := rtx.Transaction
	if err := tx.Validate(); err != nil {
		return err
	}
	if len(rtx.ResolvedInputs) != len(tx.Inputs) {
		return fmt.Errorf("已解析输入数量 %d 与交易输入数量 %d 不一致", len(rtx.ResolvedInputs), len(tx.Inputs))
	}
	if len(rtx.ResolvedCellDeps) != len(tx.CellDeps) {
		return fmt.Errorf("已解析依赖数量 %d 与交易依赖数量 %d 不一致", len(rtx.ResolvedCellDeps), len(tx.CellDeps))
	}
	for i, cell := range rtx.ResolvedInputs {
		if cell == nil || cell.Output == nil || cell.Output.Lock == nil {
			return fmt.Errorf("输入 %d 未解析", i)
		}
	}
	for i, cell := range rtx.ResolvedCellDeps {
		if cell == nil || cell.Output == nil {
			return fmt.Errorf("依赖 %d 未解析", i)
		}
	}
	return nil
}
