package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/rangeregistry/internal/app/version"
)

// versionCmd 输出版本信息
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "输出版本信息",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pterm.Println(version.GetFullVersion())
	},
}
