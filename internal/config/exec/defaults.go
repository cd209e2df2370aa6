package exec

import "time"

const (
	// defaultTimeout 单个 WASM 程序 2 秒
	defaultTimeout = 2 * time.Second

	// defaultMemoryLimitPages 256 页 = 16MiB
	defaultMemoryLimitPages = 256

	defaultCompileCache = true

	// defaultMaxExecDepth 只允许一层委托：被委托程序不能再委托
	defaultMaxExecDepth = 1
)
