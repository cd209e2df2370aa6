// Package writegate 定义账本写门闸接口
//
// 两种写控制机制：
//   - 只读模式：禁止一切账本写入（Submit / Genesis）
//   - 写围栏：只允许携带 token 的写入，用于维护窗口内的受控操作
//
// 优先级：ReadOnly > WriteFence > Normal
package writegate

import (
	"context"
	"errors"
)

// ErrWriteBlocked 写操作被门闸拦截
var ErrWriteBlocked = errors.New("write blocked")

// WriteGate 账本写门闸
type WriteGate interface {
	// EnterReadOnly 进入只读模式，同时清除写围栏
	EnterReadOnly(reason string)

	// ExitReadOnly 退出只读模式
	ExitReadOnly()

	// IsReadOnly 是否处于只读模式
	IsReadOnly() bool

	// ReadOnlyReason 只读原因
	ReadOnlyReason() string

	// EnableWriteFence 开启写围栏，返回写入 token；只读模式下失败
	EnableWriteFence(purpose string) (string, error)

	// DisableWriteFence 关闭写围栏；token 不匹配时失败
	DisableWriteFence(token string) error

	// AssertWriteAllowed 校验 op 是否允许写入，被拦截时返回包装了 ErrWriteBlocked 的错误
	AssertWriteAllowed(ctx context.Context, op string) error
}
