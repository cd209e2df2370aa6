package config

import (
	"errors"
	"fmt"

	logconfig "github.com/weisyn/rangeregistry/internal/config/log"
	"github.com/weisyn/rangeregistry/internal/config/storage/badger"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置验证失败 [%s]: %s", e.Field, e.Message)
}

var validGinModes = map[string]bool{
	"debug": true, "release": true, "test": true,
}

// ValidateAppConfig 校验用户配置中出现的字段
//
// 未出现的字段由各子配置的默认值填充，不在此校验。
func ValidateAppConfig(appConfig *types.AppConfig) error {
	if appConfig == nil {
		return nil
	}

	var errs []error

	if l := appConfig.Log; l != nil && l.Level != nil && !logconfig.Level(*l.Level).Valid() {
		errs = append(errs, &ValidationError{Field: "log.level", Message: fmt.Sprintf("未知日志级别 %q", *l.Level)})
	}

	if a := appConfig.API; a != nil {
		if a.HTTPPort != nil && (*a.HTTPPort <= 0 || *a.HTTPPort > 65535) {
			errs = append(errs, &ValidationError{Field: "api.http_port", Message: fmt.Sprintf("端口超出范围: %d", *a.HTTPPort)})
		}
		if a.GinMode != nil && !validGinModes[*a.GinMode] {
			errs = append(errs, &ValidationError{Field: "api.gin_mode", Message: fmt.Sprintf("未知 gin 模式 %q", *a.GinMode)})
		}
	}

	if e := appConfig.Exec; e != nil {
		if e.TimeoutMs != nil && *e.TimeoutMs < 0 {
			errs = append(errs, &ValidationError{Field: "exec.timeout_ms", Message: "不能为负数"})
		}
		if e.MemoryLimitPages != nil && (*e.MemoryLimitPages < 0 || *e.MemoryLimitPages > 65536) {
			errs = append(errs, &ValidationError{Field: "exec.memory_limit_pages", Message: "取值范围 0..65536"})
		}
		if e.MaxExecDepth != nil && *e.MaxExecDepth < 0 {
			errs = append(errs, &ValidationError{Field: "exec.max_exec_depth", Message: "不能为负数"})
		}
	}

	if s := appConfig.Storage; s != nil && s.MemTableSizeMB != nil && *s.MemTableSizeMB < badger.MinMemTableSizeMB {
		errs = append(errs, &ValidationError{
			Field:   "storage.mem_table_size_mb",
			Message: fmt.Sprintf("不能小于 %dMB: %d", badger.MinMemTableSizeMB, *s.MemTableSizeMB),
		})
	}

	return errors.Join(errs...)
}
