// Package metrics 提供脚本验证与账本的 prometheus 指标
//
// 所有指标注册到应用自有的 Registry 上，不使用全局 DefaultRegisterer。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	metricsintf "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/metrics"
)

// 确保Collector实现了metricsintf.Recorder接口
var _ metricsintf.Recorder = (*Collector)(nil)

// Namespace 指标命名空间
const Namespace = "rangereg"

// Collector 指标收集器
type Collector struct {
	registry *prometheus.Registry

	groupCounter  *prometheus.CounterVec
	groupDuration *prometheus.HistogramVec
	ledgerTxs     *prometheus.CounterVec
}

// NewCollector 创建指标收集器
//
// withRuntime 为 true 时额外注册 Go 运行时与进程指标。
func NewCollector(withRuntime bool) *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	c := &Collector{registry: registry}

	c.groupCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "verifier",
			Name:      "groups_total",
			Help:      "Total number of verified script groups",
		},
		[]string{"program", "result"},
	)

	c.groupDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "verifier",
			Name:      "duration_seconds",
			Help:      "Script group verification duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"program"},
	)

	c.ledgerTxs = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ledger",
			Name:      "txs_total",
			Help:      "Total number of transactions processed by the ledger",
		},
		[]string{"result"},
	)

	if withRuntime {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return c
}

// ObserveGroup 记录一次脚本组验证
func (c *Collector) ObserveGroup(program string, result string, elapsed time.Duration) {
	c.groupCounter.WithLabelValues(program, result).Inc()
	c.groupDuration.WithLabelValues(program).Observe(elapsed.Seconds())
}

// ObserveLedgerTx 记录一次账本交易处理结果
func (c *Collector) ObserveLedgerTx(result string) {
	c.ledgerTxs.WithLabelValues(result).Inc()
}

// Registry 返回底层 Registry（HTTP /metrics 与中间件使用）
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// nopRecorder 未注入指标时使用
type nopRecorder struct{}

func (nopRecorder) ObserveGroup(string, string, time.Duration) {}
func (nopRecorder) ObserveLedgerTx(string)                     {}

// Nop 返回不记录任何指标的 Recorder
func Nop() metricsintf.Recorder {
	return nopRecorder{}
}
