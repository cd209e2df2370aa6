package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/rangeregistry/pkg/types"
)

func quietConfig() *types.AppConfig {
	return &types.AppConfig{
		Log: &types.UserLogConfig{Level: types.StringPtr("error")},
	}
}

func TestStart_InMemoryLedger(t *testing.T) {
	application, err := Start(
		WithAppConfig(quietConfig()),
		WithInMemoryStore(),
		WithoutAPI(),
		WithQuiet(),
	)
	require.NoError(t, err)
	defer func() { require.NoError(t, application.Stop()) }()

	require.NotNil(t, application.Ledger())
	require.NotNil(t, application.CellStore())
	require.NotNil(t, application.Hasher())

	ctx := context.Background()
	lock := &types.Script{HashType: types.HashTypeData, Args: []byte{1}}
	txHash, err := application.Ledger().Genesis(ctx,
		[]types.CellOutput{{Capacity: 100, Lock: lock}},
		[][]byte{{0xaa}},
	)
	require.NoError(t, err)

	cell, err := application.CellStore().GetCell(ctx, types.OutPoint{TxHash: txHash, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa}, []byte(cell.Data))
	assert.True(t, cell.Output.Lock.Equal(lock))
}

func TestLoadAppConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	dataRoot := filepath.Join(dir, "data")
	path := filepath.Join(dir, "rangereg.json")
	content := `{"app_name":"test","storage":{"data_root":"` + dataRoot + `"},"api":{"http_port":18080}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	opts := newOptions(WithConfigFile(path), WithQuiet())
	require.NoError(t, loadAppConfig(opts))

	cfg := opts.GetAppConfig()
	require.NotNil(t, cfg.AppName)
	assert.Equal(t, "test", *cfg.AppName)
	require.NotNil(t, cfg.API)
	assert.Equal(t, 18080, *cfg.API.HTTPPort)

	info, err := os.Stat(dataRoot)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadAppConfig_MissingFileUsesDefaults(t *testing.T) {
	opts := newOptions(WithConfigFile(filepath.Join(t.TempDir(), "absent.json")), WithQuiet())
	require.NoError(t, loadAppConfig(opts))
	assert.Nil(t, opts.GetAppConfig().Storage)
}

func TestLoadAppConfig_InvalidJSON(t *testing.T) {
	opts := newOptions(WithEmbeddedConfig([]byte("{not json")), WithQuiet())
	err := loadAppConfig(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "嵌入配置")
}

func TestLoadAppConfig_OverridesApplyOnTopOfFile(t *testing.T) {
	opts := newOptions(
		WithEmbeddedConfig([]byte(`{"storage":{"in_memory":false}}`)),
		WithInMemoryStore(),
		WithQuiet(),
	)
	require.NoError(t, loadAppConfig(opts))

	storage := opts.GetAppConfig().Storage
	require.NotNil(t, storage)
	require.NotNil(t, storage.InMemory)
	assert.True(t, *storage.InMemory)
}

func TestGetConfigFilePath(t *testing.T) {
	t.Setenv(ConfigPathEnv, "/etc/rangereg.json")
	assert.Equal(t, "/tmp/explicit.json", getConfigFilePath("/tmp/explicit.json"))
	assert.Equal(t, "/etc/rangereg.json", getConfigFilePath(""))
}
