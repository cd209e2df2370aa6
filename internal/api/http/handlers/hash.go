package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httptypes "github.com/weisyn/rangeregistry/internal/api/http/types"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/types"
)

// HashHandler 指纹计算工具接口
type HashHandler struct {
	hasher crypto.HashManager
}

// NewHashHandler 创建哈希处理器
func NewHashHandler(hasher crypto.HashManager) *HashHandler {
	return &HashHandler{hasher: hasher}
}

// RegisterRoutes 注册路由
func (h *HashHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/hash/script", h.Script)
	r.POST("/hash/instance-id", h.InstanceID)
}

// Script POST /v1/hash/script，返回脚本指纹
func (h *HashHandler) Script(c *gin.Context) {
	var script types.Script
	if err := c.ShouldBindJSON(&script); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, http.StatusOK, httptypes.HashResponse{Hash: h.hasher.ScriptHash(&script)})
}

// InstanceID POST /v1/hash/instance-id，返回注册表实例标识
func (h *HashHandler) InstanceID(c *gin.Context) {
	var req httptypes.InstanceIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	respond(c, http.StatusOK, httptypes.HashResponse{Hash: h.hasher.InstanceID(&req.Input, req.Index)})
}
