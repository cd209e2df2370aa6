// Package types 定义 API 层共享的错误响应结构
package types

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ProblemDetails 错误响应（RFC7807 + 扩展字段）
//
// 脚本拒绝时 ScriptCode / ScriptReason 携带拒绝码与原因名。
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Code         string                 `json:"code"`
	Layer        string                 `json:"layer"`
	UserMessage  string                 `json:"userMessage"`
	ScriptCode   int8                   `json:"scriptCode,omitempty"`
	ScriptReason string                 `json:"scriptReason,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	TraceID      string                 `json:"traceId"`
	Timestamp    string                 `json:"timestamp"`
}

// Error 实现 error 接口
func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.UserMessage
}

// WriteJSON 将 Problem Details 写入 HTTP 响应
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewProblemDetails 创建新的 Problem Details
func NewProblemDetails(
	code string,
	layer string,
	userMessage string,
	detail string,
	status int,
	details map[string]interface{},
) *ProblemDetails {
	if details == nil {
		details = make(map[string]interface{})
	}
	return &ProblemDetails{
		Code:        code,
		Layer:       layer,
		UserMessage: userMessage,
		Detail:      detail,
		Status:      status,
		Details:     details,
		TraceID:     uuid.New().String(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// IsProblemDetails 检查错误是否为 Problem Details
func IsProblemDetails(err error) (*ProblemDetails, bool) {
	if pd, ok := err.(*ProblemDetails); ok {
		return pd, true
	}
	return nil, false
}

// 错误码
const (
	CodeTxScriptRejected  = "TX_SCRIPT_REJECTED"
	CodeTxUnknownOutPoint = "TX_UNKNOWN_OUT_POINT"
	CodeTxMalformed       = "TX_MALFORMED"
	CodeCellNotFound      = "CELL_NOT_FOUND"

	CodeCommonValidationError    = "COMMON_VALIDATION_ERROR"
	CodeCommonInternalError      = "COMMON_INTERNAL_ERROR"
	CodeCommonServiceUnavailable = "COMMON_SERVICE_UNAVAILABLE"
	CodeCommonRateLimited        = "COMMON_RATE_LIMITED"
)

// Layer 常量
const (
	LayerLedger = "ledger"
	LayerAPI    = "api"
)
