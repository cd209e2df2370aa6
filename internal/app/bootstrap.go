package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/weisyn/rangeregistry/internal/api"
	config "github.com/weisyn/rangeregistry/internal/config"
	"github.com/weisyn/rangeregistry/internal/core/exec"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/clock"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/event"
	log "github.com/weisyn/rangeregistry/internal/core/infrastructure/log"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/metrics"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/storage"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/writegate"
	"github.com/weisyn/rangeregistry/internal/core/ledger"
	"github.com/weisyn/rangeregistry/internal/core/persistence"
	"github.com/weisyn/rangeregistry/internal/core/tx"
	configiface "github.com/weisyn/rangeregistry/pkg/interfaces/config"
	cryptoiface "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	ledgeriface "github.com/weisyn/rangeregistry/pkg/interfaces/ledger"
	persistenceiface "github.com/weisyn/rangeregistry/pkg/interfaces/persistence"
)

// Framework layers
const (
	// 基础设施层
	LayerInfrastructure = "infrastructure"
	// 通信与数据层
	LayerCommunication = "communication"
	// 业务逻辑层
	LayerBusiness = "business"
	// 应用层
	LayerApplication = "application"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts  *options
	fxApp *fx.App

	// 启动后由 fx.Populate 填充
	ledger    ledgeriface.Ledger
	cellStore persistenceiface.CellStore
	hasher    cryptoiface.HashManager
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{
		opts: opts,
	}
}

// SetupInfrastructureLayer 设置基础设施层模块
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		config.Module(),  // 1. 配置(不依赖其他)
		log.Module(),     // 2. 日志(依赖配置)
		crypto.Module(),  // 3. 哈希(依赖配置)
		metrics.Module(), // 4. 指标
		clock.Module(),   // 5. 时钟
	}
}

// SetupCommunicationLayer 设置通信与数据层模块
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		event.Module(),       // 事件(依赖基础设施)
		storage.Module(),     // BadgerDB存储(依赖配置和日志)
		persistence.Module(), // 活cell集合(依赖存储)
		writegate.Module(),   // 写门闸
	}
}

// SetupBusinessLayer 设置业务逻辑层模块
//
// 加载顺序遵循依赖关系：执行器 -> 验证内核 -> 账本
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		exec.Module(),   // 1. WASM运行时与执行器
		tx.Module(),     // 2. 验证内核与内置程序注册
		ledger.Module(), // 3. 账本（解析、验证、应用）
	}
}

// SetupApplicationLayer 设置应用层模块
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	modules := []fx.Option{
		// 提供应用配置选项，供config模块使用
		fx.Provide(func() configiface.AppOptions { return b.opts }),
		fx.Populate(&b.ledger, &b.cellStore, &b.hasher),
	}

	// 条件性添加API模块
	if b.opts.enableAPI {
		modules = append(modules, api.Module())
		b.printf("🌐 API模块已启用\n")
	} else {
		b.printf("⚠️  API模块已禁用\n")
	}

	return modules
}

// SetupModules 设置所有应用模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var allModules []fx.Option

	// 按照依赖顺序添加各层模块
	allModules = append(allModules, b.SetupInfrastructureLayer()...)
	allModules = append(allModules, b.SetupCommunicationLayer()...)
	allModules = append(allModules, b.SetupBusinessLayer()...)
	allModules = append(allModules, b.SetupApplicationLayer()...)

	return allModules
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	appOptions := []fx.Option{
		fx.Options(b.SetupModules()...),

		// 禁用fx内部日志
		fx.NopLogger,
	}

	b.fxApp = fx.New(appOptions...)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("装配模块失败: %w", err)
	}
	return nil
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	b.printf("正在启动应用...\n")

	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}

	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	b.printf("正在停止应用...\n")

	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}

	return nil
}

func (b *Bootstrap) printf(format string, args ...interface{}) {
	if b.opts.quiet {
		return
	}
	fmt.Printf(format, args...)
}

// BootstrapApp 执行完整的引导过程并返回应用实例
func BootstrapApp(options ...Option) (App, error) {
	opts := newOptions(options...)
	if err := loadAppConfig(opts); err != nil {
		return nil, err
	}

	bootstrap := NewBootstrap(opts)

	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	if err := bootstrap.StartApp(startupCtx); err != nil {
		return nil, err
	}

	return &internalApp{
		fxApp:     bootstrap.fxApp,
		bootstrap: bootstrap,
	}, nil
}

// WaitForSignal 等待退出信号
func WaitForSignal() os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	return <-signals
}
