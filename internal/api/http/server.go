// Package http 提供账本的 HTTP API（gin）
//
// 📋 **路由**：
//   - POST /v1/tx/verify            验证交易（不改变账本）
//   - POST /v1/tx/submit            验证并应用交易
//   - GET  /v1/cells                活 cell 列表（分页）
//   - GET  /v1/cells/:tx_hash/:index 读取单个活 cell
//   - POST /v1/hash/script          计算脚本指纹
//   - POST /v1/hash/instance-id     计算注册表实例标识
//   - POST /v1/admin/read-only      切换只读模式
//   - GET  /healthz                 健康检查
//   - GET  /metrics                 Prometheus 指标
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/rangeregistry/internal/api/http/handlers"
	"github.com/weisyn/rangeregistry/internal/api/http/middleware"
	apiconfig "github.com/weisyn/rangeregistry/internal/config/api"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/rangeregistry/pkg/interfaces/infrastructure/writegate"
	ledgeriface "github.com/weisyn/rangeregistry/pkg/interfaces/ledger"
)

// ServerDeps HTTP 服务器依赖；Gate、Programs、Registry、Logger 可以为 nil
type ServerDeps struct {
	Options  *apiconfig.HTTPConfig
	Ledger   ledgeriface.Ledger
	Hasher   crypto.HashManager
	Gate     writegate.WriteGate
	Programs handlers.ProgramLister
	Registry *prometheus.Registry
	Logger   log.Logger
}

// Server HTTP服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	options    apiconfig.HTTPConfig
	logger     log.Logger
	listener   net.Listener
}

// NewServer 创建 HTTP 服务器并注册全部路由
func NewServer(deps ServerDeps) *Server {
	options := apiconfig.New(nil).GetOptions().HTTP
	if deps.Options != nil {
		options = *deps.Options
	}

	switch options.GinMode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(options.GinMode)
	default:
		gin.SetMode(gin.ReleaseMode)
		gin.DefaultWriter = io.Discard
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if deps.Logger != nil {
		router.Use(middleware.NewLogger(deps.Logger).Middleware())
	}
	if deps.Registry != nil {
		router.Use(middleware.NewMetrics(deps.Registry).Middleware())
	}
	router.Use(middleware.ErrorHandler(deps.Logger))
	if options.MaxRequestSize > 0 {
		router.Use(maxBodySize(options.MaxRequestSize))
	}

	s := &Server{router: router, options: options, logger: deps.Logger}
	s.registerRoutes(deps)
	return s
}

func (s *Server) registerRoutes(deps ServerDeps) {
	health := handlers.NewHealthHandler(deps.Gate, deps.Programs)
	s.router.GET("/healthz", health.Health)
	if deps.Registry != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	v1 := s.router.Group("/v1")
	v1.Use(middleware.NewRateLimit(s.options.ReadRateLimit, s.options.WriteRateLimit).Middleware())
	handlers.NewTransactionHandler(deps.Ledger, deps.Logger).RegisterRoutes(v1)
	handlers.NewCellHandler(deps.Ledger).RegisterRoutes(v1)
	handlers.NewHashHandler(deps.Hasher).RegisterRoutes(v1)
	v1.POST("/admin/read-only", health.SetReadOnly)
}

// Router 返回路由引擎（测试使用 httptest 直接驱动）
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Addr 返回实际监听地址；未启动时返回配置地址
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return net.JoinHostPort(s.options.Host, strconv.Itoa(s.options.Port))
}

// Start 开始监听并在后台提供服务
func (s *Server) Start(context.Context) error {
	listener, err := net.Listen("tcp", net.JoinHostPort(s.options.Host, strconv.Itoa(s.options.Port)))
	if err != nil {
		return fmt.Errorf("HTTP 监听失败: %w", err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.options.ReadTimeout,
		WriteTimeout: s.options.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if s.logger != nil {
				s.logger.Errorf("HTTP 服务异常退出: %v", err)
			}
		}
	}()
	if s.logger != nil {
		s.logger.Infof("🌐 HTTP API 已启动: http://%s", s.Addr())
	}
	return nil
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.options.ShutdownTimeout)
	defer cancel()
	if s.logger != nil {
		s.logger.Info("HTTP API 正在关闭")
	}
	return s.httpServer.Shutdown(ctx)
}

// maxBodySize 限制请求体大小
func maxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
