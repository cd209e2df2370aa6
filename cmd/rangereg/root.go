package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	Verbose bool // 详细模式：输出节点日志
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "rangereg",
	Short: "区间注册表节点与工具",
	Long: `rangereg - 基于 cell 模型的区间注册表

区间注册表脚本保证键空间分区只能被拆分，区间查询锁通过证明 cell
或自更新授权后，把最终判定委托给验证时指定的程序。

常用命令:
  rangereg serve --config configs/rangereg.json
  rangereg verify tx.json --cells cells.json
  rangereg hash script script.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "输出节点日志")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(versionCmd)
}
