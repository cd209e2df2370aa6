package verifier

import (
	"time"

	"go.uber.org/zap"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
)

// nopRecorder 未注入指标时使用
type nopRecorder struct{}

func (nopRecorder) ObserveGroup(string, string, time.Duration) {}
func (nopRecorder) ObserveLedgerTx(string)                     {}

// nopLogger 未注入日志时使用
type nopLogger struct{}

func (nopLogger) Debug(string)                   {}
func (nopLogger) Debugf(string, ...interface{})  {}
func (nopLogger) Info(string)                    {}
func (nopLogger) Infof(string, ...interface{})   {}
func (nopLogger) Warn(string)                    {}
func (nopLogger) Warnf(string, ...interface{})   {}
func (nopLogger) Error(string)                   {}
func (nopLogger) Errorf(string, ...interface{})  {}
func (nopLogger) Fatal(string)                   {}
func (nopLogger) Fatalf(string, ...interface{})  {}
func (nopLogger) With(...interface{}) log.Logger { return nopLogger{} }
func (nopLogger) Sync() error                    { return nil }
func (nopLogger) GetZapLogger() *zap.Logger      { return zap.NewNop() }
