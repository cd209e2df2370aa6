// Package app 组装并运行区间注册表节点
//
// 🎯 **职责**：
// - 加载 JSON 配置（文件、嵌入内容或直接传入）
// - 按层装配 fx 模块：基础设施 -> 数据 -> 业务 -> 应用
// - 对 CLI 暴露账本、活 cell 存储与哈希服务
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/fx"

	cryptoiface "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	ledgeriface "github.com/weisyn/rangeregistry/pkg/interfaces/ledger"
	"github.com/weisyn/rangeregistry/pkg/interfaces/persistence"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// ConfigPathEnv 配置文件路径环境变量
const ConfigPathEnv = "RANGEREG_CONFIG_PATH"

// 🔧 零值陷阱处理说明：
// 配置结构使用指针字段区分"用户未设置"和"用户设置为零值"：
// - nil: 未在配置文件中设置，使用系统默认值
// - &value: 明确设置，即使是零值（0、false、""）也会被采用

// loadAppConfig 按优先级确定应用配置
//
// 优先级：WithAppConfig > WithEmbeddedConfig > 配置文件 > 默认配置。
// 配置文件不存在时使用默认配置；内容无法解析时返回错误。
func loadAppConfig(opts *options) error {
	if opts.appConfig == nil {
		appConfig, err := readConfig(opts)
		if err != nil {
			return err
		}
		opts.appConfig = appConfig
	}

	for _, override := range opts.overrides {
		override(opts.appConfig)
	}

	if err := createDataDirectories(opts.appConfig); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}
	return nil
}

func readConfig(opts *options) (*types.AppConfig, error) {
	data := opts.embeddedConfig
	source := "嵌入配置"

	if data == nil {
		configPath := getConfigFilePath(opts.configFilePath)
		if configPath == "" {
			return &types.AppConfig{}, nil
		}
		raw, err := os.ReadFile(configPath)
		if os.IsNotExist(err) {
			if !opts.quiet {
				fmt.Printf("配置文件 %s 不存在，使用默认配置\n", configPath)
			}
			return &types.AppConfig{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		data = raw
		source = configPath
	}

	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("解析配置 %s 失败: %w", source, err)
	}
	if !opts.quiet {
		fmt.Printf("已成功加载配置: %s\n", source)
	}
	return &appConfig, nil
}

// createDataDirectories 根据配置创建数据目录与日志目录
func createDataDirectories(appConfig *types.AppConfig) error {
	var directories []string

	inMemory := appConfig.Storage != nil && appConfig.Storage.InMemory != nil && *appConfig.Storage.InMemory
	if !inMemory {
		if appConfig.Storage != nil && appConfig.Storage.DataRoot != nil {
			directories = append(directories, *appConfig.Storage.DataRoot)
		} else if appConfig.DataDir != nil {
			directories = append(directories, *appConfig.DataDir)
		}
	}

	if appConfig.Log != nil && appConfig.Log.FilePath != nil && *appConfig.Log.FilePath != "" {
		directories = append(directories, filepath.Dir(*appConfig.Log.FilePath))
	}

	for _, dir := range directories {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录 %s 失败: %w", dir, err)
		}
	}
	return nil
}

// getConfigFilePath 获取配置文件路径
func getConfigFilePath(explicit string) string {
	// 1. 优先使用显式指定的路径
	if explicit != "" {
		return explicit
	}

	// 2. 其次使用环境变量
	return ConfigPathFromEnv()
}

// ConfigPathFromEnv 读取环境变量中的配置文件路径
func ConfigPathFromEnv() string {
	return os.Getenv(ConfigPathEnv)
}

// App 是区间注册表应用的对外接口
type App interface {
	// Stop 停止应用
	Stop() error

	// Wait 阻塞直到收到退出信号，然后停止应用
	Wait()

	// Ledger 账本服务
	Ledger() ledgeriface.Ledger

	// CellStore 活 cell 存储
	CellStore() persistence.CellStore

	// Hasher 哈希服务
	Hasher() cryptoiface.HashManager
}

// internalApp 应用的内部实现
type internalApp struct {
	fxApp     *fx.App
	bootstrap *Bootstrap
}

// Stop 停止应用
//
// 留足时间让 BadgerDB 完成同步与关闭。
func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

// Wait 等待应用收到退出信号
func (a *internalApp) Wait() {
	a.bootstrap.printf("🔄 应用正在运行，按 Ctrl+C 停止...\n")

	sig := WaitForSignal()
	a.bootstrap.printf("\n🛑 收到信号 %v，正在优雅退出...\n", sig)

	if err := a.Stop(); err != nil {
		fmt.Printf("⚠️ 停止应用时出错: %v\n", err)
	}
}

func (a *internalApp) Ledger() ledgeriface.Ledger { return a.bootstrap.ledger }

func (a *internalApp) CellStore() persistence.CellStore { return a.bootstrap.cellStore }

func (a *internalApp) Hasher() cryptoiface.HashManager { return a.bootstrap.hasher }

// Start 启动应用
func Start(appOptions ...Option) (App, error) {
	return BootstrapApp(appOptions...)
}
