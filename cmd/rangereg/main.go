// rangereg 区间注册表节点与离线工具
//
// 子命令：
//   - serve：启动节点（BadgerDB 存储 + HTTP API）
//   - verify：用本地 cell 夹具离线验证交易
//   - hash：计算脚本指纹与注册表实例标识
package main

func main() {
	Execute()
}
