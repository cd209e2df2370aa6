package log

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logconfig "github.com/weisyn/rangeregistry/internal/config/log"
)

// captureStdout 捕获 f 执行期间创建的控制台日志输出
func captureStdout(t *testing.T, f func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// TestConsoleLog 测试控制台输出
func TestConsoleLog(t *testing.T) {
	output := captureStdout(t, func() {
		logger, err := New(logconfig.New(&logconfig.LogOptions{Level: InfoLevel, ToConsole: true}))
		require.NoError(t, err)
		logger.Info("测试控制台日志")
		logger.Debug("不应出现的调试日志")
		_ = logger.Sync()
	})

	assert.Contains(t, output, "INFO")
	assert.Contains(t, output, "测试控制台日志")
	assert.NotContains(t, output, "不应出现的调试日志")
}

// TestStructuredFields 测试 With 附加的结构化字段
func TestStructuredFields(t *testing.T) {
	output := captureStdout(t, func() {
		logger, err := New(logconfig.New(&logconfig.LogOptions{Level: InfoLevel, ToConsole: true}))
		require.NoError(t, err)
		logger.With("module", "verifier", "groups", 3).Info("结构化日志测试")
		_ = logger.Sync()
	})

	assert.Contains(t, output, "结构化日志测试")
	assert.Contains(t, output, `"module": "verifier"`)
	assert.Contains(t, output, `"groups": 3`)
}

// TestFileLogJSON 测试文件输出为 JSON
func TestFileLogJSON(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "rangereg.log")

	logger, err := New(logconfig.New(&logconfig.LogOptions{
		Level:      DebugLevel,
		FilePath:   logPath,
		MaxSize:    1,
		MaxBackups: 1,
	}))
	require.NoError(t, err)

	logger.With("module", "ledger").Debug("调试日志")
	logger.Warn("警告日志")
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "debug", first["level"])
	assert.Equal(t, "调试日志", first["message"])
	assert.Equal(t, "ledger", first["module"])

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "warn", second["level"])
}

// TestSetLogger 测试设置和切换全局日志记录器
func TestSetLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	logger1, _ := New(logconfig.New(&logconfig.LogOptions{Level: InfoLevel}))
	logger2, _ := New(logconfig.New(&logconfig.LogOptions{Level: WarnLevel}))

	SetLogger(logger1)
	assert.Same(t, logger1, GetLogger())

	SetLogger(logger2)
	assert.Same(t, logger2, GetLogger())

	SetLogger(nil)
	assert.Same(t, logger2, GetLogger(), "nil 不应覆盖全局日志记录器")
}

// TestResetDefault 测试重置默认日志记录器
func TestResetDefault(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	custom, _ := New(logconfig.New(&logconfig.LogOptions{Level: WarnLevel}))
	SetLogger(custom)

	ResetDefault()
	assert.NotSame(t, custom, GetLogger())
}

// TestNewModuleLogger 测试模块日志记录器
func TestNewModuleLogger(t *testing.T) {
	assert.Nil(t, NewModuleLogger(nil, "api"))

	output := captureStdout(t, func() {
		base, err := New(logconfig.New(&logconfig.LogOptions{Level: InfoLevel, ToConsole: true}))
		require.NoError(t, err)
		NewModuleLogger(base, "exec").Info("模块日志")
		_ = base.Sync()
	})
	assert.Contains(t, output, `"module": "exec"`)
}
