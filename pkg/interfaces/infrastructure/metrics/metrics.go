// Package metrics 定义验证与账本指标上报接口
//
// 实现位于 internal/core/infrastructure/metrics，基于 prometheus。
package metrics

import "time"

// 结果标签取值
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
)

// Recorder 指标记录器
type Recorder interface {
	// ObserveGroup 记录一次脚本组验证
	ObserveGroup(program string, result string, elapsed time.Duration)

	// ObserveLedgerTx 记录一次账本交易处理结果
	ObserveLedgerTx(result string)
}
