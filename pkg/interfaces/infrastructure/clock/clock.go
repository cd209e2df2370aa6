// Package clock 定义时间源接口
package clock

import "time"

// Clock 统一时间源
//
// 账本事件时间戳从这里取值，测试中可替换为可控实现。
type Clock interface {
	// Now 获取当前时间
	Now() time.Time

	// Since 计算从指定时间到现在的持续时间
	Since(t time.Time) time.Duration
}
