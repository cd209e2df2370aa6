package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/weisyn/rangeregistry/internal/core/exec"
	"github.com/weisyn/rangeregistry/pkg/interfaces/config"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/writegate"
	ledgeriface "github.com/weisyn/rangeregistry/pkg/interfaces/ledger"
)

// ModuleInput 定义 HTTP 模块的输入依赖
type ModuleInput struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Provider    config.Provider
	Ledger      ledgeriface.Ledger
	HashManager crypto.HashManager
	Executor    *exec.Executor       `optional:"true"`
	WriteGate   writegate.WriteGate  `optional:"true"`
	Registry    *prometheus.Registry `optional:"true"`
	Logger      log.Logger           `optional:"true"`
}

// Module 返回 HTTP API 模块
//
// HTTP 服务关闭时（http_enabled=false）只构造路由，不监听端口。
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(NewServerFromModule),
	)
}

// NewServerFromModule 从 fx 依赖创建服务器并注册生命周期
func NewServerFromModule(input ModuleInput) *Server {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "api")
	}
	options := input.Provider.GetAPI().HTTP

	deps := ServerDeps{
		Options:  &options,
		Ledger:   input.Ledger,
		Hasher:   input.HashManager,
		Gate:     input.WriteGate,
		Registry: input.Registry,
		Logger:   logger,
	}
	if input.Executor != nil {
		deps.Programs = input.Executor
	}
	server := NewServer(deps)

	if options.Enabled {
		input.Lifecycle.Append(fx.Hook{
			OnStart: server.Start,
			OnStop:  server.Stop,
		})
	} else if logger != nil {
		logger.Info("HTTP API 未启用")
	}
	return server
}
