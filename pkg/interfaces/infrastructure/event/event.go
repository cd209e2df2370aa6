// Package event 定义事件总线接口
package event

import "github.com/weisyn/rangeregistry/pkg/types"

// EventType 兼容别名
type EventType = types.EventType

// EventBus 事件总线接口
//
// handler 为任意函数，参数与 Publish 的 args 按位置对应。
type EventBus interface {
	// Subscribe 同步订阅
	Subscribe(eventType EventType, handler interface{}) error
	// SubscribeAsync 异步订阅；transactional 为 true 时同一处理器串行执行
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error
	// SubscribeOnce 一次性订阅
	SubscribeOnce(eventType EventType, handler interface{}) error
	// Publish 发布事件
	Publish(eventType EventType, args ...interface{})
	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error
	// WaitAsync 等待所有异步处理完成
	WaitAsync()
	// HasCallback 是否存在订阅者
	HasCallback(eventType EventType) bool
}
