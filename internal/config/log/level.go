package log

// Level 日志级别，取值与配置文件中的 log.level 一致
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
	PanicLevel Level = "panic"
	FatalLevel Level = "fatal"
)

// Valid 是否为 zap 能识别的级别
func (l Level) Valid() bool {
	_, ok := defaultLevelMap[string(l)]
	return ok
}
