// Package writegate 提供账本写门闸的默认实现
//
// # 功能说明
//
// 1. ReadOnly 模式
//   - 运维手动切换，或存储异常后进入
//   - 所有 AssertWriteAllowed 调用失败，Verify 等只读操作不受影响
//
// 2. WriteFence 模式
//   - 维护窗口内只允许携带 token 的写入
//   - token 通过 writegate.WithWriteToken 绑定到 context
//
// # 使用方式
//
//	if err := gate.AssertWriteAllowed(ctx, "ledger.submit"); err != nil {
//	    return err
//	}
package writegate
