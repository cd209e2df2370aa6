// Package version provides version information for the application.
package version

import (
	"fmt"
	"runtime"
	"time"
)

// 构建时注入的变量，通过ldflags设置
//
//	go build -ldflags "-X github.com/weisyn/rangeregistry/internal/app/version.Version=v0.2.0"
var (
	Version   = "v0.1.0"
	BuildTime = "unknown" // RFC3339
	GitCommit = "unknown"
)

// BuildInfo 构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersion 获取版本号
func GetVersion() string {
	return Version
}

// GetBuildInfo 获取完整构建信息
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetFullVersion 获取完整版本信息（用于详细输出）
func GetFullVersion() string {
	info := GetBuildInfo()

	versionStr := fmt.Sprintf("rangereg %s", info.Version)
	if info.BuildTime != "unknown" {
		if parsed, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
			versionStr += fmt.Sprintf("\n构建时间: %s", parsed.Format("2006-01-02 15:04:05 MST"))
		} else {
			versionStr += fmt.Sprintf("\n构建时间: %s", info.BuildTime)
		}
	}
	if info.GitCommit != "unknown" {
		versionStr += fmt.Sprintf("\n提交: %s", info.GitCommit)
	}
	versionStr += fmt.Sprintf("\nGo版本: %s", info.GoVersion)
	versionStr += fmt.Sprintf("\n平台: %s", info.Platform)

	return versionStr
}
