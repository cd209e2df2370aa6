// 基于asaskevich/EventBus的事件总线实现

package event

import (
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
)

// 确保EventBus实现了event.EventBus接口
var _ event.EventBus = (*EventBus)(nil)

// EventBus 是基于asaskevich/EventBus的实现
//
// 订阅前校验事件名格式，并统计发布次数。
type EventBus struct {
	bus    evbus.Bus
	logger log.Logger

	published atomic.Uint64
}

// New 创建事件总线实例
func New(logger log.Logger) *EventBus {
	return &EventBus{
		bus:    evbus.New(),
		logger: logger,
	}
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	if err := ValidateEventType(eventType); err != nil {
		return err
	}
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	if err := ValidateEventType(eventType); err != nil {
		return err
	}
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// SubscribeOnce 实现一次性订阅
func (eb *EventBus) SubscribeOnce(eventType event.EventType, handler interface{}) error {
	if err := ValidateEventType(eventType); err != nil {
		return err
	}
	return eb.bus.SubscribeOnce(string(eventType), handler)
}

// Publish 实现发布
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	eb.published.Add(1)
	if eb.logger != nil {
		eb.logger.Debugf("发布事件: %s", eventType)
	}
	eb.bus.Publish(string(eventType), args...)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// WaitAsync 等待异步处理完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// HasCallback 是否存在该事件的订阅者
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	return eb.bus.HasCallback(string(eventType))
}

// PublishedCount 已发布事件总数
func (eb *EventBus) PublishedCount() uint64 {
	return eb.published.Load()
}
