// Package storage 定义键值存储接口
//
// BadgerStore 是账本活 cell 集合的持久化后端。读操作走只读事务，
// 写操作（提交交易时的消费与创建）必须在 RunInTransaction 中原子完成。
package storage

import (
	"context"
	"errors"
)

// ErrStoreClosed 存储已关闭或正在关闭
var ErrStoreClosed = errors.New("badger store is closing")

// BadgerStore 定义了键值存储的应用接口
type BadgerStore interface {
	// Close 关闭数据库，等待进行中的写事务完成
	Close() error

	// Get 获取指定键的值；键不存在时返回 nil, nil
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 设置键值对
	Set(ctx context.Context, key, value []byte) error

	// Delete 删除指定键，键不存在时不报错
	Delete(ctx context.Context, key []byte) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key []byte) (bool, error)

	// PrefixScan 按前缀扫描，返回 map 的键为原始键的字符串形式
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	// RunInTransaction 在读写事务中执行 fn；fn 返回错误时回滚
	RunInTransaction(ctx context.Context, fn func(tx BadgerTransaction) error) error
}

// BadgerTransaction 定义了键值存储事务操作接口
type BadgerTransaction interface {
	// Get 获取指定键的值；键不存在时返回 nil, nil
	Get(key []byte) ([]byte, error)

	// Set 设置键值对
	Set(key, value []byte) error

	// Delete 删除指定键
	Delete(key []byte) error

	// Exists 检查键是否存在
	Exists(key []byte) (bool, error)
}
