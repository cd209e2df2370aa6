package log

import (
	"go.uber.org/zap/zapcore"
)

// 日志配置默认值
const (
	// defaultLogLevel 默认日志级别
	defaultLogLevel = string(InfoLevel)

	// defaultToConsole 默认启用控制台输出
	defaultToConsole = true

	// defaultFilePath 默认不写文件
	defaultFilePath = ""

	// defaultMaxSize 单个日志文件最大大小(MB)
	defaultMaxSize = 100

	// defaultMaxBackups 最大备份文件数
	defaultMaxBackups = 10

	// defaultMaxAge 日志文件最大保留天数
	defaultMaxAge = 30

	// defaultCompress 默认启用历史日志压缩
	defaultCompress = true

	// defaultEnableCaller 默认启用调用者信息
	defaultEnableCaller = true

	// defaultEnableStacktrace Error级别及以上附带堆栈
	defaultEnableStacktrace = true
)

// 默认的日志级别映射
var defaultLevelMap = map[string]zapcore.Level{
	string(DebugLevel): zapcore.DebugLevel,
	string(InfoLevel):  zapcore.InfoLevel,
	string(WarnLevel):  zapcore.WarnLevel,
	string(ErrorLevel): zapcore.ErrorLevel,
	string(PanicLevel): zapcore.PanicLevel,
	string(FatalLevel): zapcore.FatalLevel,
}
