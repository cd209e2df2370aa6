package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	metricsintf "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/metrics"
)

// ModuleOutput 指标模块输出
type ModuleOutput struct {
	fx.Out

	Recorder metricsintf.Recorder
	Registry *prometheus.Registry
}

// Module 返回 metrics 模块的 fx.Option
//
// 提供：
// - Recorder: 验证器与账本使用的指标记录器
// - *prometheus.Registry: HTTP /metrics 暴露与请求中间件使用
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(func() ModuleOutput {
			collector := NewCollector(true)
			return ModuleOutput{
				Recorder: collector,
				Registry: collector.Registry(),
			}
		}),
	)
}
