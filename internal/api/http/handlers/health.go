package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	httptypes "github.com/weisyn/rangeregistry/internal/api/http/types"
	"github.com/weisyn/rangeregistry/internal/app/version"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/writegate"
)

// ProgramLister 列出已注册的内置程序
type ProgramLister interface {
	Programs() []string
}

// HealthHandler 健康检查与运维开关
type HealthHandler struct {
	gate     writegate.WriteGate
	programs ProgramLister
	started  time.Time
}

// NewHealthHandler 创建健康检查处理器；gate、programs 可以为 nil
func NewHealthHandler(gate writegate.WriteGate, programs ProgramLister) *HealthHandler {
	return &HealthHandler{gate: gate, programs: programs, started: time.Now()}
}

// Health GET /healthz
//
// 只读模式下仍返回 200，状态为 read_only。
func (h *HealthHandler) Health(c *gin.Context) {
	resp := httptypes.HealthResponse{
		Status:    "healthy",
		Programs:  []string{},
		Version:   version.GetVersion(),
		Uptime:    time.Since(h.started).Truncate(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if h.programs != nil {
		resp.Programs = h.programs.Programs()
	}
	if h.gate != nil && h.gate.IsReadOnly() {
		resp.Status = "read_only"
		resp.ReadOnly = true
		resp.Reason = h.gate.ReadOnlyReason()
	}
	c.JSON(http.StatusOK, resp)
}

// SetReadOnly POST /v1/admin/read-only
func (h *HealthHandler) SetReadOnly(c *gin.Context) {
	var req httptypes.ReadOnlyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if h.gate == nil {
		c.Status(http.StatusNotImplemented)
		return
	}
	if req.Enabled {
		h.gate.EnterReadOnly(req.Reason)
	} else {
		h.gate.ExitReadOnly()
	}
	respond(c, http.StatusOK, gin.H{"readOnly": h.gate.IsReadOnly()})
}
