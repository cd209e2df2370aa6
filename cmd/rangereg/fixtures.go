package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// readJSON 读取 JSON 夹具文件
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取 %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("解析 %s: %w", path, err)
	}
	return nil
}
