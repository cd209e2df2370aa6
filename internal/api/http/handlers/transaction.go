package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/rangeregistry/internal/api/http/middleware"
	httptypes "github.com/weisyn/rangeregistry/internal/api/http/types"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	ledgeriface "github.com/weisyn/rangeregistry/pkg/interfaces/ledger"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// TransactionHandler 交易验证与提交
type TransactionHandler struct {
	ledger ledgeriface.Ledger
	logger log.Logger
}

// NewTransactionHandler 创建交易处理器
func NewTransactionHandler(ledger ledgeriface.Ledger, logger log.Logger) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, logger: logger}
}

// RegisterRoutes 注册路由
func (h *TransactionHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/tx/verify", h.Verify)
	r.POST("/tx/submit", h.Submit)
}

// Verify POST /v1/tx/verify
//
// 只运行脚本，不改变账本。
func (h *TransactionHandler) Verify(c *gin.Context) {
	var tx types.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		badRequest(c, err)
		return
	}
	hash, err := h.ledger.Verify(c.Request.Context(), &tx)
	middleware.SetTxHash(c, hash)
	if err != nil {
		_ = c.Error(ledgerProblem(err, hash))
		return
	}
	respond(c, http.StatusOK, httptypes.TxResponse{TxHash: hash, Status: "verified"})
}

// Submit POST /v1/tx/submit
func (h *TransactionHandler) Submit(c *gin.Context) {
	var tx types.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		badRequest(c, err)
		return
	}
	hash, err := h.ledger.Submit(c.Request.Context(), &tx)
	middleware.SetTxHash(c, hash)
	if err != nil {
		_ = c.Error(ledgerProblem(err, hash))
		return
	}
	if h.logger != nil {
		h.logger.Infof("交易 %s 已通过 API 提交", hash.Short())
	}
	respond(c, http.StatusOK, httptypes.TxResponse{TxHash: hash, Status: "applied"})
}
