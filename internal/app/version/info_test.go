package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFullVersion(t *testing.T) {
	oldTime, oldCommit := BuildTime, GitCommit
	defer func() { BuildTime, GitCommit = oldTime, oldCommit }()

	BuildTime, GitCommit = "unknown", "unknown"
	full := GetFullVersion()
	assert.Contains(t, full, "rangereg "+Version)
	assert.NotContains(t, full, "构建时间")
	assert.Contains(t, full, runtime.GOOS+"/"+runtime.GOARCH)

	BuildTime, GitCommit = "2026-01-02T03:04:05Z", "abc123"
	full = GetFullVersion()
	assert.Contains(t, full, "构建时间: 2026-01-02 03:04:05 UTC")
	assert.Contains(t, full, "提交: abc123")

	BuildTime = "yesterday"
	assert.Contains(t, GetFullVersion(), "构建时间: yesterday")
}
