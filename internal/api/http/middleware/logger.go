package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apitypes "github.com/weisyn/rangeregistry/internal/api/types"
	infralog "github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/rangeregistry/pkg/types"
)

const txHashKey = "tx_hash"

// SetTxHash 记录本次请求处理的交易哈希，供访问日志输出
func SetTxHash(c *gin.Context, hash types.Hash) {
	c.Set(txHashKey, hash)
}

// Logger 访问日志
//
// 每个请求一条结构化日志：路由、状态码、耗时、请求ID。
// 交易接口额外带上交易哈希；脚本拒绝时带上拒绝码与原因名。
// 5xx 记为 Error，4xx 记为 Warn，其余为 Debug。
type Logger struct {
	logger infralog.Logger
}

// NewLogger 创建访问日志中间件
func NewLogger(logger infralog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Middleware 返回Gin中间件
func (m *Logger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		zl := m.logger.GetZapLogger()
		if zl == nil {
			return
		}
		status := c.Writer.Status()
		fields := append(requestFields(c, status, time.Since(start)), ledgerFields(c)...)

		switch {
		case status >= 500:
			zl.Error("HTTP 请求", fields...)
		case status >= 400:
			zl.Warn("HTTP 请求", fields...)
		default:
			zl.Debug("HTTP 请求", fields...)
		}
	}
}

func requestFields(c *gin.Context, status int, latency time.Duration) []zap.Field {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return []zap.Field{
		zap.String("request_id", GetRequestID(c)),
		zap.String("method", c.Request.Method),
		zap.String("route", route),
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("client_ip", c.ClientIP()),
	}
}

// ledgerFields 从交易哈希与 Problem Details 中提取账本相关字段
func ledgerFields(c *gin.Context) []zap.Field {
	var fields []zap.Field
	if v, ok := c.Get(txHashKey); ok {
		if hash, ok := v.(types.Hash); ok && !hash.IsZero() {
			fields = append(fields, zap.String("tx_hash", hash.Hex()))
		}
	}
	if len(c.Errors) == 0 {
		return fields
	}

	problem, ok := apitypes.IsProblemDetails(c.Errors.Last().Err)
	if !ok {
		return append(fields, zap.String("error", c.Errors.Last().Error()))
	}
	fields = append(fields, zap.String("code", problem.Code))
	if problem.ScriptReason != "" {
		fields = append(fields,
			zap.Int8("script_code", problem.ScriptCode),
			zap.String("script_reason", problem.ScriptReason),
		)
	}
	return fields
}
