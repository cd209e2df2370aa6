package types

import "time"

// EventType 事件主题
type EventType string

// 账本事件主题
const (
	// EventTypeTxApplied 交易通过验证并已写入活 cell 集合
	EventTypeTxApplied EventType = "ledger:tx_applied"
	// EventTypeTxRejected 交易被拒绝（解析失败或脚本拒绝）
	EventTypeTxRejected EventType = "ledger:tx_rejected"
)

// TxAppliedEvent 交易已应用
type TxAppliedEvent struct {
	EventID   string     `json:"event_id"`
	TxHash    Hash       `json:"tx_hash"`
	Consumed  []OutPoint `json:"consumed"`
	Created   []OutPoint `json:"created"`
	Timestamp time.Time  `json:"timestamp"`
}

// TxRejectedEvent 交易被拒绝
//
// Code 为脚本拒绝码；非脚本原因（如引用了不存在的 cell）时为 0。
type TxRejectedEvent struct {
	EventID   string    `json:"event_id"`
	TxHash    Hash      `json:"tx_hash"`
	Reason    string    `json:"reason"`
	Code      int8      `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}
