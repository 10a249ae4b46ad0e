// Package api 提供基于 Gin 的 HTTP 传输层。
//
// 传输层保持轻薄：路由、JSON 编解码、错误码映射与通用中间件（CORS、
// 请求 ID、访问日志、HTTP 指标）。所有业务语义都在 number 包内。
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jeffpollockjr/unique-number-api/clog"
	"github.com/jeffpollockjr/unique-number-api/metrics"
	"github.com/jeffpollockjr/unique-number-api/number"
	"github.com/jeffpollockjr/unique-number-api/xerrors"
)

// Server HTTP 服务
type Server struct {
	alloc       *number.Allocator
	logger      clog.Logger
	httpMetrics *metrics.HTTPServerMetrics
}

// Option 配置 Server 实例的选项
type Option func(*Server)

// WithLogger 注入日志记录器
func WithLogger(l clog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l.WithNamespace("api")
		}
	}
}

// WithHTTPMetrics 注入 HTTP 指标集
func WithHTTPMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(s *Server) {
		s.httpMetrics = m
	}
}

// NewServer 创建 HTTP 服务实例
func NewServer(alloc *number.Allocator, opts ...Option) (*Server, error) {
	if alloc == nil {
		return nil, xerrors.New("api: allocator is required")
	}

	s := &Server{
		alloc:  alloc,
		logger: clog.Discard(),
	}
	for _, o := range opts {
		o(s)
	}

	return s, nil
}

// Router 构建 gin 路由
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestID(),
		CORS(),
		AccessLog(s.logger),
	)
	if s.httpMetrics != nil {
		r.Use(metrics.GinHTTPMiddleware(s.httpMetrics))
	}

	r.GET("/health", s.handleHealth)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/generate", s.handleGenerate)
		apiGroup.GET("/check/:value", s.handleCheck)
		apiGroup.GET("/stats", s.handleStats)
		apiGroup.POST("/cleanup", s.handleCleanup)
		apiGroup.DELETE("/numbers", s.handleDeleteAll)
		apiGroup.DELETE("/numbers/:value", s.handleDelete)
	}

	return r
}
