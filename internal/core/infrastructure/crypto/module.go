// Package crypto 提供加密相关功能
package crypto

import (
	"context"

	"github.com/weisyn/rangeregistry/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	log "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
)

// CryptoParams 定义加密模块的依赖参数
type CryptoParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    log.Logger `optional:"true"` // 日志记录器
}

// CryptoOutput 定义加密模块的输出结构
type CryptoOutput struct {
	fx.Out

	HashManager crypto.HashManager
}

// Module 返回加密模块
func Module() fx.Option {
	return fx.Module("crypto",
		// 提供加密服务
		fx.Provide(ProvideCryptoServices),
	)
}

// ProvideCryptoServices 提供加密服务
func ProvideCryptoServices(params CryptoParams) CryptoOutput {
	service := hash.NewHashService()

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return service.Close()
		},
	})

	if params.Logger != nil {
		params.Logger.With("module", "crypto").Debugf("哈希服务已创建，个性化串=%s", hash.Personalization)
	}

	return CryptoOutput{HashManager: service}
}
