package badger

// getDefaultPath 获取默认数据库路径
func getDefaultPath() string {
	return resolvePath("./data/badger")
}

const (
	// defaultInMemory 默认落盘
	defaultInMemory = false

	// defaultSyncWrites 默认启用同步写入
	// 活 cell 集合是账本唯一的状态，提交后必须可恢复
	defaultSyncWrites = true

	// defaultMemTableSize 默认内存表大小为64MB
	defaultMemTableSize = 64 << 20
)

// MinMemTableSizeMB 内存表下限
//
// badger 单批写入上限为内存表的 15%，默认 1MB 的值阈值要求内存表至少约 7MB。
const MinMemTableSizeMB = 8
