package ledger

import (
	"go.uber.org/fx"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/metrics"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/writegate"
	ledgeriface "github.com/weisyn/rangeregistry/pkg/interfaces/ledger"
	"github.com/weisyn/rangeregistry/pkg/interfaces/persistence"
	txiface "github.com/weisyn/rangeregistry/pkg/interfaces/tx"
)

// ModuleInput 定义账本模块的输入依赖
type ModuleInput struct {
	fx.In

	CellStore   persistence.CellStore `optional:"false"`
	TxVerifier  txiface.TxVerifier    `optional:"false"`
	HashManager crypto.HashManager    `optional:"false"`
	EventBus    event.EventBus        `optional:"true"`
	Recorder    metrics.Recorder      `optional:"true"`
	WriteGate   writegate.WriteGate   `optional:"true"`
	Clock       clock.Clock           `optional:"true"`
	Logger      log.Logger            `optional:"true"`
}

// ModuleOutput 定义账本模块的输出服务
type ModuleOutput struct {
	fx.Out

	Service *Service
	Ledger  ledgeriface.Ledger
}

// Module 返回账本模块
func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建账本服务
func ProvideServices(input ModuleInput) ModuleOutput {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "ledger")
	}
	service := NewService(Deps{
		Cells:    input.CellStore,
		Verifier: input.TxVerifier,
		Hasher:   input.HashManager,
		Bus:      input.EventBus,
		Recorder: input.Recorder,
		Gate:     input.WriteGate,
		Clock:    input.Clock,
		Logger:   logger,
	})
	return ModuleOutput{Service: service, Ledger: service}
}
