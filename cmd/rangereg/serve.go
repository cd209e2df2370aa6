package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/rangeregistry/configs"
	"github.com/weisyn/rangeregistry/internal/app"
)

var serveConfigPath string

// serveCmd 启动节点
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动节点（BadgerDB 存储 + HTTP API）",
	Long: `启动节点并阻塞直到收到 Ctrl+C。

未指定 --config 且未设置 RANGEREG_CONFIG_PATH 时使用内置默认配置。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []app.Option{app.WithAPI()}
		switch {
		case serveConfigPath != "":
			opts = append(opts, app.WithConfigFile(serveConfigPath))
		case app.ConfigPathFromEnv() == "":
			opts = append(opts, app.WithEmbeddedConfig(configs.GetDefaultConfig()))
		}

		application, err := app.Start(opts...)
		if err != nil {
			return err
		}
		pterm.Success.Println("节点已启动")
		application.Wait()
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "配置文件路径")
}
