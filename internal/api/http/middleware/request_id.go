package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID 请求追踪ID头
const HeaderRequestID = "X-Request-ID"

const (
	requestIDKey       = "request_id"
	maxRequestIDLength = 64
)

// RequestID 为每个请求确定追踪ID
//
// 客户端给出的 ID 只在不超过 64 个可见 ASCII 字符时沿用，否则生成新的 UUID。
// 该 ID 回写到响应头，成功响应的 requestId 与 Problem Details 的 traceId 都取自它。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if !acceptRequestID(id) {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func acceptRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID 当前请求的追踪ID；未经过 RequestID 中间件时为空
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
