package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apitypes "github.com/weisyn/rangeregistry/internal/api/types"
)

// RateLimit 按客户端 IP 限流
//
// 读操作（GET）与写操作（其余方法）使用各自的令牌桶，写操作通常更严格。
// limit <= 0 表示不限流。
type RateLimit struct {
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	readLimit  int
	writeLimit int
}

// NewRateLimit 创建限流中间件，参数为每秒请求数
func NewRateLimit(readLimit, writeLimit int) *RateLimit {
	return &RateLimit{
		limiters:   make(map[string]*rate.Limiter),
		readLimit:  readLimit,
		writeLimit: writeLimit,
	}
}

// Middleware 返回Gin中间件
func (m *RateLimit) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		write := isWriteOperation(c.Request.Method)
		limit := m.readLimit
		if write {
			limit = m.writeLimit
		}
		if limit <= 0 {
			c.Next()
			return
		}

		if !m.limiter(c.ClientIP(), write, limit).Allow() {
			problem := apitypes.NewProblemDetails(
				apitypes.CodeCommonRateLimited,
				apitypes.LayerAPI,
				"请求过于频繁，请稍后重试。",
				"rate limit exceeded",
				http.StatusTooManyRequests,
				map[string]interface{}{"limit": limit},
			)
			problem.TraceID = GetRequestID(c)
			WriteProblemDetails(c, problem)
			return
		}
		c.Next()
	}
}

func (m *RateLimit) limiter(clientID string, write bool, limit int) *rate.Limiter {
	key := "r/" + clientID
	if write {
		key = "w/" + clientID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	limiter, ok := m.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(limit), limit)
		m.limiters[key] = limiter
	}
	return limiter
}

func isWriteOperation(method string) bool {
	return method != http.MethodGet && method != http.MethodHead
}
