package clock

import (
	"go.uber.org/fx"

	infraClock "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/clock"
)

// Module 提供系统时钟
func Module() fx.Option {
	return fx.Module("clock",
		fx.Provide(func() infraClock.Clock { return NewSystemClock() }),
	)
}
