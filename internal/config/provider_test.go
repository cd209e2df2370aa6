package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/rangeregistry/internal/config/storage/badger"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// TestProviderDefaults 测试未配置时的默认值
func TestProviderDefaults(t *testing.T) {
	provider := NewProvider(nil)

	assert.Equal(t, "info", provider.GetLog().Level)
	assert.True(t, provider.GetLog().ToConsole)

	apiOpts := provider.GetAPI()
	assert.True(t, apiOpts.HTTP.Enabled)
	assert.Equal(t, 28680, apiOpts.HTTP.Port)

	execOpts := provider.GetExec()
	assert.Equal(t, 2*time.Second, execOpts.Timeout)
	assert.Equal(t, uint32(256), execOpts.MemoryLimitPages)
	assert.Equal(t, 1, execOpts.MaxExecDepth)

	assert.False(t, provider.GetBadger().InMemory)
	assert.True(t, filepath.IsAbs(provider.GetBadger().Path))
}

// TestProviderUserOverrides 测试用户配置覆盖
func TestProviderUserOverrides(t *testing.T) {
	cfg := &types.AppConfig{
		Log: &types.UserLogConfig{
			Level:    types.StringPtr("debug"),
			FilePath: types.StringPtr("/tmp/rangereg/app.log"),
		},
		API: &types.UserAPIConfig{
			HTTPPort: types.IntPtr(9000),
			GinMode:  types.StringPtr("test"),
		},
		Exec: &types.UserExecConfig{
			TimeoutMs:    types.IntPtr(500),
			CompileCache: types.BoolPtr(false),
		},
		Storage: &types.UserStorageConfig{
			DataRoot: types.StringPtr("/tmp/rangereg"),
			InMemory: types.BoolPtr(true),
		},
	}
	provider := NewProvider(cfg)

	logOpts := provider.GetLog()
	assert.Equal(t, "debug", logOpts.Level)
	assert.Equal(t, "/tmp/rangereg/app.log", logOpts.FilePath)
	assert.False(t, logOpts.ToConsole, "指定文件路径时默认不输出到控制台")

	assert.Equal(t, 9000, provider.GetAPI().HTTP.Port)
	assert.Equal(t, "test", provider.GetAPI().HTTP.GinMode)

	assert.Equal(t, 500*time.Millisecond, provider.GetExec().Timeout)
	assert.False(t, provider.GetExec().CompileCache)

	badgerOpts := provider.GetBadger()
	assert.Equal(t, "/tmp/rangereg/badger", badgerOpts.Path)
	assert.True(t, badgerOpts.InMemory)
}

// TestProviderDataDirFallback 测试 data_dir 作为存储根目录
func TestProviderDataDirFallback(t *testing.T) {
	provider := NewProvider(&types.AppConfig{DataDir: types.StringPtr("/var/lib/rangereg")})
	assert.Equal(t, "/var/lib/rangereg/badger", provider.GetBadger().Path)
}

// TestValidateAppConfig 测试配置校验
func TestValidateAppConfig(t *testing.T) {
	require.NoError(t, ValidateAppConfig(nil))
	require.NoError(t, ValidateAppConfig(&types.AppConfig{}))

	err := ValidateAppConfig(&types.AppConfig{
		Log: &types.UserLogConfig{Level: types.StringPtr("verbose")},
		API: &types.UserAPIConfig{HTTPPort: types.IntPtr(70000)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "api.http_port")

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	err = ValidateAppConfig(&types.AppConfig{
		Storage: &types.UserStorageConfig{MemTableSizeMB: types.IntPtr(1)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.mem_table_size_mb")

	require.NoError(t, ValidateAppConfig(&types.AppConfig{
		Storage: &types.UserStorageConfig{MemTableSizeMB: types.IntPtr(badger.MinMemTableSizeMB)},
	}))
}

// TestProviderMemTableSize 测试内存表大小按 MB 覆盖
func TestProviderMemTableSize(t *testing.T) {
	provider := NewProvider(&types.AppConfig{
		DataDir: types.StringPtr("/var/lib/rangereg"),
		Storage: &types.UserStorageConfig{MemTableSizeMB: types.IntPtr(16)},
	})
	assert.Equal(t, int64(16<<20), provider.GetBadger().MemTableSize)
}
