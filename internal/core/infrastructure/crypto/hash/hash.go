// Package hash 提供区块链通用的个性化 BLAKE2b-256 哈希服务
package hash

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/minio/blake2b-simd"

	cryptointf "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// 确保HashService实现了cryptointf.HashManager接口
var _ cryptointf.HashManager = (*HashService)(nil)

// Personalization 16 字节个性化串
const Personalization = "ckb-default-hash"

const (
	// defaultCacheLifeWindow 脚本哈希缓存条目的存活时间
	defaultCacheLifeWindow = 10 * time.Minute
	// defaultCacheMaxMB 缓存内存上限
	defaultCacheMaxMB = 32
)

// HashService 提供哈希计算功能
type HashService struct {
	// 缓存脚本哈希，键为脚本序列化字节
	scriptCache *bigcache.BigCache
}

// NewHashService 创建新的哈希服务
//
// 缓存创建失败时退化为无缓存模式，哈希结果不受影响。
func NewHashService() *HashService {
	config := bigcache.DefaultConfig(defaultCacheLifeWindow)
	config.HardMaxCacheSize = defaultCacheMaxMB
	config.Verbose = false

	cache, err := bigcache.New(context.Background(), config)
	if err != nil {
		cache = nil
	}
	return &HashService{scriptCache: cache}
}

// newHasher 创建个性化 BLAKE2b-256 实例
func newHasher() (blake2bHasher, error) {
	h, err := blake2b.New(&blake2b.Config{
		Size:   types.HashLength,
		Person: []byte(Personalization),
	})
	if err != nil {
		return nil, fmt.Errorf("创建 blake2b 哈希器失败: %w", err)
	}
	return h, nil
}

// blake2bHasher 只需要写入与求和
type blake2bHasher interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
}

// Blake256 计算多段数据拼接后的个性化 BLAKE2b-256
func (s *HashService) Blake256(parts ...[]byte) types.Hash {
	h, err := newHasher()
	if err != nil {
		// 参数固定，只有实现缺陷才会走到这里
		panic(err)
	}
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return types.BytesToHash(h.Sum(nil))
}

// ScriptHash 计算脚本指纹（序列化 Script 的哈希）
func (s *HashService) ScriptHash(script *types.Script) types.Hash {
	if script == nil {
		return types.Hash{}
	}
	encoded := script.Serialize()

	if s.scriptCache != nil {
		if cached, err := s.scriptCache.Get(string(encoded)); err == nil {
			return types.BytesToHash(cached)
		} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
			// 缓存异常时直接计算
			return s.Blake256(encoded)
		}
	}

	result := s.Blake256(encoded)
	if s.scriptCache != nil {
		_ = s.scriptCache.Set(string(encoded), result.Bytes())
	}
	return result
}

// TransactionHash 计算交易哈希（不含见证）
func (s *HashService) TransactionHash(tx *types.Transaction) types.Hash {
	return s.Blake256(tx.SerializeRaw())
}

// InstanceID 计算注册表实例标识
//
// 输入为 serialize(input) ++ le64(outputIndex)。
func (s *HashService) InstanceID(input *types.CellInput, outputIndex uint64) types.Hash {
	var index [8]byte
	binary.LittleEndian.PutUint64(index[:], outputIndex)
	return s.Blake256(input.Serialize(), index[:])
}

// Close 释放缓存
func (s *HashService) Close() error {
	if s.scriptCache == nil {
		return nil
	}
	return s.scriptCache.Close()
}
