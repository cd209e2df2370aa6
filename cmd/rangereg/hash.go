package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/rangeregistry/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/rangeregistry/pkg/types"
)

var instanceOutputIndex uint64

// hashCmd 指纹计算
var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "计算脚本指纹与注册表实例标识",
}

// hashScriptCmd 计算脚本指纹
var hashScriptCmd = &cobra.Command{
	Use:   "script <script.json>",
	Short: "计算脚本指纹 Hash(serialize(script))",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var script types.Script
		if err := readJSON(args[0], &script); err != nil {
			return err
		}
		pterm.Println(hash.NewHashService().ScriptHash(&script).Hex())
		return nil
	},
}

// hashInstanceIDCmd 计算注册表实例标识
var hashInstanceIDCmd = &cobra.Command{
	Use:   "instance-id <input.json>",
	Short: "计算注册表实例标识 Hash(serialize(input) ++ le64(index))",
	Long: `input.json 为交易第一个输入（since + previous_output），
--index 为新注册表 cell 在输出中的位置。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var input types.CellInput
		if err := readJSON(args[0], &input); err != nil {
			return err
		}
		pterm.Println(hash.NewHashService().InstanceID(&input, instanceOutputIndex).Hex())
		return nil
	},
}

func init() {
	hashInstanceIDCmd.Flags().Uint64Var(&instanceOutputIndex, "index", 0, "注册表 cell 的输出位置")

	hashCmd.AddCommand(hashScriptCmd)
	hashCmd.AddCommand(hashInstanceIDCmd)
}
