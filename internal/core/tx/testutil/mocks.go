// Package testutil 提供 TX 模块测试的辅助工具
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// ==================== Mock 对象 ====================

// MockLogger 统一的日志Mock实现
//
// 所有方法为空实现，不记录日志。
type MockLogger struct{}

func (m *MockLogger) Debug(msg string)                          {}
func (m *MockLogger) Debugf(format string, args ...interface{}) {}
func (m *MockLogger) Info(msg string)                           {}
func (m *MockLogger) Infof(format string, args ...interface{})  {}
func (m *MockLogger) Warn(msg string)                           {}
func (m *MockLogger) Warnf(format string, args ...interface{})  {}
func (m *MockLogger) Error(msg string)                          {}
func (m *MockLogger) Errorf(format string, args ...interface{}) {}
func (m *MockLogger) Fatal(msg string)                          {}
func (m *MockLogger) Fatalf(format string, args ...interface{}) {}
func (m *MockLogger) With(args ...interface{}) log.Logger       { return m }
func (m *MockLogger) Sync() error                               { return nil }
func (m *MockLogger) GetZapLogger() *zap.Logger                 { return zap.NewNop() }

// NewTestLogger 创建测试用的Logger
func NewTestLogger() log.Logger {
	return &MockLogger{}
}

// ExecCall 一次委托调用的记录
type ExecCall struct {
	CodeHash types.Hash
	HashType types.ScriptHashType
	Argv     []string
}

// MockDelegator 记录委托调用并返回预设结果
type MockDelegator struct {
	mu     sync.Mutex
	Calls  []ExecCall
	Result error
}

// Exec 实现 txiface.Delegator
func (d *MockDelegator) Exec(_ context.Context, codeHash types.Hash, hashType types.ScriptHashType, argv []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = append(d.Calls, ExecCall{CodeHash: codeHash, HashType: hashType, Argv: append([]string(nil), argv...)})
	return d.Result
}

// CallCount 委托调用次数
func (d *MockDelegator) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Calls)
}

// FuncProgram 以函数实现的脚本程序
type FuncProgram struct {
	ProgramName string
	Fn          func(ctx context.Context, env *txiface.ProgramEnv) error
}

// Name 实现 txiface.ScriptProgram
func (p *FuncProgram) Name() string { return p.ProgramName }

// Run 实现 txiface.ScriptProgram
func (p *FuncProgram) Run(ctx context.Context, env *txiface.ProgramEnv) error {
	return p.Fn(ctx, env)
}

// MockLoader 按代码哈希返回预设程序
type MockLoader struct {
	mu        sync.Mutex
	Programs  map[types.Hash]txiface.ScriptProgram
	Delegate  txiface.Delegator
	LoadCount int
}

// NewMockLoader 创建加载器
func NewMockLoader() *MockLoader {
	return &MockLoader{Programs: make(map[types.Hash]txiface.ScriptProgram)}
}

// Load 实现 txiface.ProgramLoader
func (l *MockLoader) Load(_ txiface.CellView, codeHash types.Hash, _ types.ScriptHashType) (txiface.ScriptProgram, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.LoadCount++
	program, ok := l.Programs[codeHash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrScriptNotFound, codeHash.Short())
	}
	return program, nil
}

// Delegator 实现 txiface.ProgramLoader
func (l *MockLoader) Delegator(txiface.CellView) txiface.Delegator {
	if l.Delegate == nil {
		return &MockDelegator{}
	}
	return l.Delegate
}

// RecordingLogger 记录日志内容，用于断言日志行为
type RecordingLogger struct {
	mu   sync.Mutex
	logs []string
}

func (m *RecordingLogger) record(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, level+": "+msg)
}

func (m *RecordingLogger) Debug(msg string) { m.record("DEBUG", msg) }
func (m *RecordingLogger) Debugf(format string, args ...interface{}) {
	m.record("DEBUG", fmt.Sprintf(format, args...))
}
func (m *RecordingLogger) Info(msg string) { m.record("INFO", msg) }
func (m *RecordingLogger) Infof(format string, args ...interface{}) {
	m.record("INFO", fmt.Sprintf(format, args...))
}
func (m *RecordingLogger) Warn(msg string) { m.record("WARN", msg) }
func (m *RecordingLogger) Warnf(format string, args ...interface{}) {
	m.record("WARN", fmt.Sprintf(format, args...))
}
func (m *RecordingLogger) Error(msg string) { m.record("ERROR", msg) }
func (m *RecordingLogger) Errorf(format string, args ...interface{}) {
	m.record("ERROR", fmt.Sprintf(format, args...))
}
func (m *RecordingLogger) Fatal(msg string) { m.record("FATAL", msg) }
func (m *RecordingLogger) Fatalf(format string, args ...interface{}) {
	m.record("FATAL", fmt.Sprintf(format, args...))
}
func (m *RecordingLogger) With(args ...interface{}) log.Logger { return m }
func (m *RecordingLogger) Sync() error                         { return nil }
func (m *RecordingLogger) GetZapLogger() *zap.Logger           { return zap.NewNop() }

// Contains 是否记录过包含 substr 的日志
func (m *RecordingLogger) Contains(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.logs {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
