// Package api 组织对外接口模块
package api

import (
	"go.uber.org/fx"

	"github.com/weisyn/rangeregistry/internal/api/http"
)

// Module 返回API模块
//
// fx.Invoke 确保 HTTP 服务器被构造，从而注册启动与关闭钩子。
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),
		fx.Invoke(func(*http.Server) {}),
	)
}
