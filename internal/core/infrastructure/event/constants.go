// 事件类型常量定义

package event

import (
	"fmt"
	"strings"

	"github.com/weisyn/rangeregistry/pkg/types"
)

// 全局事件类型定义 - 只保留基础的系统事件类型
//
// 业务事件（如 ledger:tx_applied）在 pkg/types 中定义，避免基础设施层与业务耦合。
const (
	// 系统事件
	SystemStarted types.EventType = "system:started"
	SystemStopped types.EventType = "system:stopped"
)

// ValidateEventType 校验事件名格式 "<domain>:<action>"
func ValidateEventType(eventType types.EventType) error {
	domain, action, ok := strings.Cut(string(eventType), ":")
	if !ok || domain == "" || action == "" {
		return fmt.Errorf("事件类型 %q 不符合 domain:action 格式", eventType)
	}
	if strings.Contains(action, ":") {
		return fmt.Errorf("事件类型 %q 包含多余的分隔符", eventType)
	}
	return nil
}
