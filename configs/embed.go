package configs

import _ "embed"

// 嵌入默认配置文件（未指定 --config 时使用）
//
//go:embed rangereg.json
var defaultConfig []byte

// GetDefaultConfig 获取默认配置
func GetDefaultConfig() []byte {
	return defaultConfig
}
