// Package badger 提供基于BadgerDB的存储实现
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	badgerconfig "github.com/weisyn/rangeregistry/internal/config/storage/badger"
	log "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	interfaces "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/storage"
)

// 确保 Store 实现了 interfaces.BadgerStore 接口
var _ interfaces.BadgerStore = (*Store)(nil)

// closeWaitTimeout 关闭时等待进行中写事务的上限
const closeWaitTimeout = 30 * time.Second

// Store 实现BadgerStore接口
type Store struct {
	db     *badgerdb.DB
	config *badgerconfig.Config
	logger log.Logger

	// 关闭过程中拒绝写入，并等待 in-flight 写完成后再关闭 db
	closing int32
	writeWg sync.WaitGroup
}

// New 创建新的BadgerStore实例
func New(config *badgerconfig.Config, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = nopLogger{}
	}

	var opts badgerdb.Options
	if config.IsInMemory() {
		logger.Info("初始化BadgerDB存储（内存模式，数据不持久化）")
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		dataDir := config.GetPath()
		logger.Infof("初始化BadgerDB存储，数据目录: %s", dataDir)
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("无法创建BadgerDB数据目录: %w", err)
		}
		opts = badgerdb.DefaultOptions(dataDir)
		opts.SyncWrites = config.IsSyncWritesEnabled()
		opts.ValueLogFileSize = 64 << 20
	}

	opts.MemTableSize = config.GetMemTableSize()
	// 值阈值不能超过单批写入上限（内存表的 15%），否则 Open 直接失败
	if maxBatch := opts.MemTableSize * 15 / 100; opts.ValueThreshold > maxBatch {
		opts.ValueThreshold = maxBatch
	}
	// 活 cell 集合很小，缓存不需要默认的 256MB
	opts.BlockCacheSize = 32 << 20
	opts.IndexCacheSize = 16 << 20
	opts.NumMemtables = 2
	opts.NumCompactors = 2
	opts.Logger = newBadgerLogger(logger)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("无法打开BadgerDB: %w", err)
	}

	logger.Info("BadgerDB存储初始化完成")
	return &Store{
		db:     db,
		config: config,
		logger: logger,
	}, nil
}

// nopLogger 用于在测试/工具链等 logger 未注入时，避免 nil 指针崩溃。
type nopLogger struct{}

func (nopLogger) Debug(string)                   {}
func (nopLogger) Debugf(string, ...interface{})  {}
func (nopLogger) Info(string)                    {}
func (nopLogger) Infof(string, ...interface{})   {}
func (nopLogger) Warn(string)                    {}
func (nopLogger) Warnf(string, ...interface{})   {}
func (nopLogger) Error(string)                   {}
func (nopLogger) Errorf(string, ...interface{})  {}
func (nopLogger) Fatal(string)                   {}
func (nopLogger) Fatalf(string, ...interface{})  {}
func (nopLogger) With(...interface{}) log.Logger { return nopLogger{} }
func (nopLogger) Sync() error                    { return nil }
func (nopLogger) GetZapLogger() *zap.Logger      { return zap.NewNop() }

// Close 关闭存储并释放资源
func (s *Store) Close() error {
	// 进入关闭态：阻断后续写入，并等待 in-flight 写完成
	if !atomic.CompareAndSwapInt32(&s.closing, 0, 1) {
		return nil
	}

	s.logger.Info("开始关闭BadgerDB存储...")
	if s.db == nil {
		return nil
	}

	waitCh := make(chan struct{})
	go func() {
		s.writeWg.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-time.After(closeWaitTimeout):
		s.logger.Warnf("等待 in-flight 写事务超时（%s），继续关闭 BadgerDB", closeWaitTimeout)
	}

	if err := s.db.Close(); err != nil {
		// LOCK 文件已不存在通常发生在目录被外部清理之后
		if strings.Contains(err.Error(), "LOCK: no such file or directory") {
			s.logger.Warn("BadgerDB LOCK文件已不存在，这通常是正常的关闭过程")
			return nil
		}
		return fmt.Errorf("关闭BadgerDB失败: %w", err)
	}

	s.logger.Info("BadgerDB存储已安全关闭")
	return nil
}

func (s *Store) beginWrite() (func(), error) {
	if atomic.LoadInt32(&s.closing) == 1 {
		return nil, interfaces.ErrStoreClosed
	}
	s.writeWg.Add(1)
	// double-check，避免在 Add 之后进入 closing
	if atomic.LoadInt32(&s.closing) == 1 {
		s.writeWg.Done()
		return nil, interfaces.ErrStoreClosed
	}
	return s.writeWg.Done, nil
}

func (s *Store) checkOpen() error {
	if atomic.LoadInt32(&s.closing) == 1 {
		return interfaces.ErrStoreClosed
	}
	return nil
}

// Get 获取指定键的值
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var valCopy []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				return nil // 键不存在时返回nil值和nil错误
			}
			return err
		}
		valCopy, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("badger获取键失败: %w", err)
	}
	return valCopy, nil
}

// Set 设置键值对
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete 删除指定键的值
func (s *Store) Delete(ctx context.Context, key []byte) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	})
}

// Exists 检查键是否存在
func (s *Store) Exists(ctx context.Context, key []byte) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	var exists bool
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("badger检查键存在性失败: %w", err)
	}
	return exists, nil
}

// PrefixScan 按前缀扫描键值对
func (s *Store) PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	result := make(map[string][]byte)

	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			valCopy, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[string(item.KeyCopy(nil))] = valCopy
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger前缀扫描失败: %w", err)
	}
	return result, nil
}

// RunInTransaction 在事务中执行操作
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx interfaces.BadgerTransaction) error) error {
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()

	tx := &Transaction{
		txn:   s.db.NewTransaction(true),
		state: int32(TxActive),
	}

	// 确保事务最终被关闭
	defer tx.Discard()

	if err := fn(tx); err != nil {
		return fmt.Errorf("事务执行失败: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("事务提交前上下文已取消: %w", err)
	}

	if tx.IsActive() {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("事务提交失败: %w", err)
		}
	} else if tx.IsDiscarded() {
		return fmt.Errorf("事务已被丢弃")
	}
	return nil
}

// badgerLogger 把 BadgerDB 内部日志转发到统一日志
type badgerLogger struct {
	logger log.Logger
}

// newBadgerLogger 创建BadgerDB日志适配器
func newBadgerLogger(logger log.Logger) *badgerLogger {
	return &badgerLogger{logger: logger.With("component", "badger")}
}

// Errorf 输出错误日志
func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf("[BadgerDB] "+strings.TrimSpace(format), args...)
}

// Warningf 输出警告日志
func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf("[BadgerDB] "+strings.TrimSpace(format), args...)
}

// Infof BadgerDB 的 info 日志量较大，降级为 debug
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+strings.TrimSpace(format), args...)
}

// Debugf 输出调试日志
func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+strings.TrimSpace(format), args...)
}
