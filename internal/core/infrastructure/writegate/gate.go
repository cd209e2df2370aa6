package writegate

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	wgif "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/writegate"
)

// gateImpl 是 WriteGate 接口的默认实现
//
// 优先级规则：ReadOnly > WriteFenceToken > Normal
//
// 线程安全：使用 RWMutex 保护内部状态
type gateImpl struct {
	mu sync.RWMutex

	readOnly bool
	reason   string

	fenceEnabled bool
	fenceToken   string
	fencePurpose string
}

var _ wgif.WriteGate = (*gateImpl)(nil)

// New 创建一个新的 WriteGate 实例
func New() wgif.WriteGate {
	return &gateImpl{}
}

// EnterReadOnly 进入只读模式
func (g *gateImpl) EnterReadOnly(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.readOnly = true
	g.reason = reason
	// 只读期间不保留写围栏，避免持有 token 的写入绕过只读
	g.fenceEnabled = false
	g.fenceToken = ""
	g.fencePurpose = ""
}

// ExitReadOnly 退出只读模式
func (g *gateImpl) ExitReadOnly() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.readOnly = false
	g.reason = ""
}

// IsReadOnly 检查是否处于只读模式
func (g *gateImpl) IsReadOnly() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.readOnly
}

// ReadOnlyReason 返回只读模式的原因
func (g *gateImpl) ReadOnlyReason() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reason
}

// EnableWriteFence 开启写围栏
func (g *gateImpl) EnableWriteFence(purpose string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.readOnly {
		return "", fmt.Errorf("%w: 只读模式: %s", wgif.ErrWriteBlocked, g.reason)
	}
	if g.fenceEnabled {
		return "", fmt.Errorf("写围栏已开启: %s", g.fencePurpose)
	}
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	g.fenceEnabled = true
	g.fenceToken = token
	g.fencePurpose = purpose
	return token, nil
}

// DisableWriteFence 关闭写围栏
func (g *gateImpl) DisableWriteFence(token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.fenceEnabled {
		return nil
	}
	if g.fenceToken != token {
		return fmt.Errorf("写围栏 token 不匹配")
	}
	g.fenceEnabled = false
	g.fenceToken = ""
	g.fencePurpose = ""
	return nil
}

// AssertWriteAllowed 校验写操作是否允许
func (g *gateImpl) AssertWriteAllowed(ctx context.Context, op string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.readOnly {
		return fmt.Errorf("%w (read-only): op=%s reason=%s", wgif.ErrWriteBlocked, op, g.reason)
	}
	if g.fenceEnabled {
		token := wgif.TokenFromContext(ctx)
		if token == "" || token != g.fenceToken {
			return fmt.Errorf("%w (write-fence): op=%s purpose=%s", wgif.ErrWriteBlocked, op, g.fencePurpose)
		}
	}
	return nil
}

func randomToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
