// Package badger 提供基于BadgerDB的存储实现
package badger

import (
	"errors"
	"fmt"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v3"

	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/storage"
)

// 确保 Transaction 实现了 interfaces.BadgerTransaction 接口
var _ storage.BadgerTransaction = (*Transaction)(nil)

// errTxClosed 事务已提交或丢弃
var errTxClosed = errors.New("事务已关闭")

// TransactionState 定义事务的状态
type TransactionState int32

const (
	// TxActive 表示事务处于活动状态
	TxActive TransactionState = iota
	// TxCommitted 表示事务已提交
	TxCommitted
	// TxDiscarded 表示事务已丢弃
	TxDiscarded
)

// Transaction 实现BadgerTransaction接口
type Transaction struct {
	txn        *badgerdb.Txn
	state      int32 // 使用atomic操作管理状态
	operations int   // 记录写操作次数
}

// Get 获取指定键的值
func (t *Transaction) Get(key []byte) ([]byte, error) {
	if !t.IsActive() {
		return nil, errTxClosed
	}

	item, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, nil // 键不存在时返回nil值和nil错误
		}
		return nil, err
	}

	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("复制键值失败: %w", err)
	}
	return val, nil
}

// Set 设置键值对
func (t *Transaction) Set(key, value []byte) error {
	if !t.IsActive() {
		return errTxClosed
	}
	if err := t.txn.Set(key, value); err != nil {
		return fmt.Errorf("设置键值失败: %w", err)
	}
	t.operations++
	return nil
}

// Delete 删除指定键的值
func (t *Transaction) Delete(key []byte) error {
	if !t.IsActive() {
		return errTxClosed
	}
	if err := t.txn.Delete(key); err != nil {
		return fmt.Errorf("删除键值失败: %w", err)
	}
	t.operations++
	return nil
}

// Exists 检查键是否存在
func (t *Transaction) Exists(key []byte) (bool, error) {
	if !t.IsActive() {
		return false, errTxClosed
	}

	_, err := t.txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("检查键存在性失败: %w", err)
	}
	return true, nil
}

// Commit 提交事务
func (t *Transaction) Commit() error {
	if !atomic.CompareAndSwapInt32(&t.state, int32(TxActive), int32(TxCommitted)) {
		if t.getState() == TxCommitted {
			return fmt.Errorf("事务已提交")
		}
		return fmt.Errorf("事务已丢弃，无法提交")
	}

	// 只读事务无需提交
	if t.operations == 0 {
		t.txn.Discard()
		return nil
	}

	if err := t.txn.Commit(); err != nil {
		// badger 提交失败后事务不可重用
		atomic.StoreInt32(&t.state, int32(TxDiscarded))
		return fmt.Errorf("事务提交失败: %w", err)
	}
	return nil
}

// Discard 丢弃事务，只有活动状态的事务才会真正丢弃
func (t *Transaction) Discard() {
	if atomic.CompareAndSwapInt32(&t.state, int32(TxActive), int32(TxDiscarded)) {
		t.txn.Discard()
	}
}

func (t *Transaction) getState() TransactionState {
	return TransactionState(atomic.LoadInt32(&t.state))
}

// IsActive 检查事务是否处于活动状态
func (t *Transaction) IsActive() bool {
	return t.getState() == TxActive
}

// IsCommitted 检查事务是否已提交
func (t *Transaction) IsCommitted() bool {
	return t.getState() == TxCommitted
}

// IsDiscarded 检查事务是否已丢弃
func (t *Transaction) IsDiscarded() bool {
	return t.getState() == TxDiscarded
}
