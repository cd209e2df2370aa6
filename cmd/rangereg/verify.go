package main

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/rangeregistry/internal/app"
	"github.com/weisyn/rangeregistry/pkg/types"
)

var verifyCellsPath string

// verifyCmd 离线验证交易
var verifyCmd = &cobra.Command{
	Use:   "verify <tx.json>",
	Short: "用本地 cell 夹具离线验证交易",
	Long: `在内存账本中载入 --cells 指定的活 cell（输入与依赖），然后运行全部脚本组。

cells.json 为 cell 数组，每项包含 out_point、output、data。
验证失败时输出拒绝原因与错误码，并以非零状态退出。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tx types.Transaction
		if err := readJSON(args[0], &tx); err != nil {
			return err
		}
		var cells []*types.CellMeta
		if verifyCellsPath != "" {
			if err := readJSON(verifyCellsPath, &cells); err != nil {
				return err
			}
		}

		txHash, err := verifyOffline(cmd.Context(), &tx, cells, globalFlags.Verbose)
		if err != nil {
			if se, ok := types.AsScriptError(err); ok {
				pterm.Error.Printfln("交易 %s 被拒绝: %s (错误码 %d)", txHash.Hex(), se.Reason, se.Code)
			}
			return err
		}
		pterm.Success.Printfln("交易 %s 验证通过", txHash.Hex())
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyCellsPath, "cells", "", "活 cell 夹具文件")
}

// verifyOffline 启动内存节点，载入夹具 cell 后验证交易
func verifyOffline(ctx context.Context, tx *types.Transaction, cells []*types.CellMeta, verbose bool) (types.Hash, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	level := "error"
	if verbose {
		level = "debug"
	}
	application, err := app.Start(
		app.WithAppConfig(&types.AppConfig{Log: &types.UserLogConfig{Level: types.StringPtr(level)}}),
		app.WithInMemoryStore(),
		app.WithoutAPI(),
		app.WithQuiet(),
	)
	if err != nil {
		return types.Hash{}, err
	}
	defer func() { _ = application.Stop() }()

	for i, cell := range cells {
		if cell == nil || cell.Output == nil || cell.Output.Lock == nil {
			return types.Hash{}, fmt.Errorf("夹具 cell %d 缺少 output.lock", i)
		}
	}
	if err := application.CellStore().Apply(ctx, nil, cells); err != nil {
		return types.Hash{}, fmt.Errorf("载入夹具 cell: %w", err)
	}

	return application.Ledger().Verify(ctx, tx)
}
