package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httptypes "github.com/weisyn/rangeregistry/internal/api/http/types"
	apitypes "github.com/weisyn/rangeregistry/internal/api/types"
	ledgeriface "github.com/weisyn/rangeregistry/pkg/interfaces/ledger"
	"github.com/weisyn/rangeregistry/pkg/interfaces/persistence"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// CellHandler 活 cell 查询
type CellHandler struct {
	ledger ledgeriface.Ledger
}

// NewCellHandler 创建 cell 查询处理器
func NewCellHandler(ledger ledgeriface.Ledger) *CellHandler {
	return &CellHandler{ledger: ledger}
}

// RegisterRoutes 注册路由
func (h *CellHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/cells", h.List)
	r.GET("/cells/:tx_hash/:index", h.Get)
}

// List GET /v1/cells?page=1&pageSize=20
func (h *CellHandler) List(c *gin.Context) {
	page := httptypes.DefaultPagination()
	if err := c.ShouldBindQuery(page); err != nil {
		badRequest(c, err)
		return
	}
	if page.Page == 0 {
		page.Page = 1
	}
	if page.PageSize == 0 {
		page.PageSize = httptypes.DefaultPagination().PageSize
	}

	cells, err := h.ledger.ListCells(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	from, to := page.Window(len(cells))
	c.JSON(http.StatusOK, httptypes.NewPaginationResponse(cells[from:to], page.Page, page.PageSize, int64(len(cells))))
}

// Get GET /v1/cells/:tx_hash/:index
func (h *CellHandler) Get(c *gin.Context) {
	var txHash types.Hash
	if err := txHash.UnmarshalText([]byte(c.Param("tx_hash"))); err != nil {
		badRequest(c, err)
		return
	}
	index, err := strconv.ParseUint(c.Param("index"), 10, 32)
	if err != nil {
		badRequest(c, err)
		return
	}

	outPoint := types.OutPoint{TxHash: txHash, Index: uint32(index)}
	cell, err := h.ledger.GetCell(c.Request.Context(), outPoint)
	if errors.Is(err, persistence.ErrUnknownOutPoint) {
		_ = c.Error(apitypes.NewProblemDetails(apitypes.CodeCellNotFound, apitypes.LayerLedger,
			"cell 不存在或已被消费。", err.Error(), http.StatusNotFound,
			map[string]interface{}{"outPoint": outPoint.String()}))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, cell)
}
