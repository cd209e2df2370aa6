// Package types 定义 HTTP 响应结构
package types

import "github.com/weisyn/rangeregistry/pkg/types"

// SuccessResponse 统一成功响应格式
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{Data: data}
}

// WithRequestID 添加请求ID
func (r *SuccessResponse) WithRequestID(requestID string) *SuccessResponse {
	r.RequestID = requestID
	return r
}

// TxResponse 交易验证/提交结果
type TxResponse struct {
	TxHash types.Hash `json:"txHash"`
	Status string     `json:"status"` // verified, applied
}

// HashResponse 哈希计算结果
type HashResponse struct {
	Hash types.Hash `json:"hash"`
}

// InstanceIDRequest 注册表实例标识计算请求
type InstanceIDRequest struct {
	Input types.CellInput `json:"input"`
	Index uint64          `json:"index"`
}

// ReadOnlyRequest 切换只读模式
type ReadOnlyRequest struct {
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string   `json:"status"` // healthy, read_only
	ReadOnly  bool     `json:"readOnly"`
	Reason    string   `json:"reason,omitempty"`
	Programs  []string `json:"programs"`
	Version   string   `json:"version"`
	Uptime    string   `json:"uptime"`
	Timestamp string   `json:"timestamp"`
}
