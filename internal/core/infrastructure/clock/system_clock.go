// Package clock 提供时间源实现
package clock

import (
	"time"

	infraClock "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/clock"
)

// SystemClock 使用系统真实时间（UTC）
type SystemClock struct{}

// NewSystemClock 创建系统时钟
func NewSystemClock() infraClock.Clock { return SystemClock{} }

func (SystemClock) Now() time.Time                  { return time.Now().UTC() }
func (SystemClock) Since(t time.Time) time.Duration { return time.Since(t) }
