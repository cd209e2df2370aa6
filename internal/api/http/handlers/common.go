// Package handlers 提供 HTTP API 的请求处理器
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/rangeregistry/internal/api/http/middleware"
	httptypes "github.com/weisyn/rangeregistry/internal/api/http/types"
	apitypes "github.com/weisyn/rangeregistry/internal/api/types"
	"github.com/weisyn/rangeregistry/internal/core/ledger"
	"github.com/weisyn/rangeregistry/internal/core/tx/verifier"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/writegate"
	"github.com/weisyn/rangeregistry/pkg/interfaces/persistence"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// respond 写入统一成功响应
func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, httptypes.NewSuccessResponse(data).WithRequestID(middleware.GetRequestID(c)))
}

// badRequest 请求体或参数无法解析
func badRequest(c *gin.Context, err error) {
	_ = c.Error(apitypes.NewProblemDetails(
		apitypes.CodeCommonValidationError,
		apitypes.LayerAPI,
		"请求参数无效。",
		err.Error(),
		http.StatusBadRequest,
		nil,
	))
}

// ledgerProblem 把账本错误映射为 Problem Details
//
//   - 脚本拒绝：422，携带拒绝码与原因名
//   - 引用了不存在或已消费的 cell，或输出与活 cell 冲突：409
//   - 交易结构不合法：400
//   - 写门闸拦截：503
func ledgerProblem(err error, txHash types.Hash) *apitypes.ProblemDetails {
	details := map[string]interface{}{"txHash": txHash}

	if se, ok := types.AsScriptError(err); ok {
		var groupErr *verifier.GroupError
		if errors.As(err, &groupErr) {
			details["group"] = groupErr.Type.String()
			details["scriptHash"] = groupErr.ScriptHash
			details["program"] = groupErr.Program
		}
		problem := apitypes.NewProblemDetails(
			apitypes.CodeTxScriptRejected,
			apitypes.LayerLedger,
			"交易被脚本拒绝。",
			err.Error(),
			http.StatusUnprocessableEntity,
			details,
		)
		problem.ScriptCode = se.Code
		problem.ScriptReason = se.Reason
		return problem
	}

	switch {
	case errors.Is(err, persistence.ErrUnknownOutPoint),
		errors.Is(err, persistence.ErrOutPointExists):
		return apitypes.NewProblemDetails(apitypes.CodeTxUnknownOutPoint, apitypes.LayerLedger,
			"交易引用了不存在或已被消费的 cell。", err.Error(), http.StatusConflict, details)
	case errors.Is(err, ledger.ErrMalformedTransaction),
		errors.Is(err, ledger.ErrDuplicateInput),
		errors.Is(err, ledger.ErrUnsupportedDepType):
		return apitypes.NewProblemDetails(apitypes.CodeTxMalformed, apitypes.LayerLedger,
			"交易结构不合法。", err.Error(), http.StatusBadRequest, details)
	case errors.Is(err, writegate.ErrWriteBlocked):
		return apitypes.NewProblemDetails(apitypes.CodeCommonServiceUnavailable, apitypes.LayerLedger,
			"账本当前不接受写入。", err.Error(), http.StatusServiceUnavailable, details)
	default:
		return apitypes.NewProblemDetails(apitypes.CodeCommonInternalError, apitypes.LayerLedger,
			"服务器内部错误，请稍后重试。", err.Error(), http.StatusInternalServerError, details)
	}
}
