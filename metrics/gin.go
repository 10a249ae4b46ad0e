package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeffpollockjr/unique-number-api/xerrors"
)

const (
	// MetricHTTPServerRequestTotal HTTP 请求总数指标名
	MetricHTTPServerRequestTotal = "http_server_requests_total"
	// MetricHTTPServerDurationSeconds HTTP 请求耗时指标名
	MetricHTTPServerDurationSeconds = "http_server_request_duration_seconds"

	// UnknownRoute 未命中路由时统一收敛，避免将原始 URL Path 作为标签导致高基数
	UnknownRoute = "unmatched"
)

// HTTPServerMetrics 封装可重用的 HTTP 服务器 RED 指标集
type HTTPServerMetrics struct {
	service      string
	requestTotal Counter
	duration     Histogram
}

// NewHTTPServerMetrics 创建可重用的 HTTP 服务器指标
func NewHTTPServerMetrics(m Meter, service string) (*HTTPServerMetrics, error) {
	if m == nil {
		return nil, xerrors.New("meter is nil")
	}

	service = strings.TrimSpace(service)
	if service == "" {
		service = "unknown"
	}

	counter, err := m.Counter(MetricHTTPServerRequestTotal, "Total number of HTTP requests.")
	if err != nil {
		return nil, xerrors.Wrap(err, "create http request counter")
	}

	duration, err := m.Histogram(MetricHTTPServerDurationSeconds, "HTTP request duration in seconds.", WithUnit("s"))
	if err != nil {
		return nil, xerrors.Wrap(err, "create http request duration histogram")
	}

	return &HTTPServerMetrics{
		service:      service,
		requestTotal: counter,
		duration:     duration,
	}, nil
}

// Observe 记录 HTTP 请求 RED 指标
func (m *HTTPServerMetrics) Observe(ctx context.Context, method string, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	safeMethod := strings.ToUpper(strings.TrimSpace(method))
	if safeMethod == "" {
		safeMethod = http.MethodGet
	}

	safeRoute := strings.TrimSpace(route)
	if safeRoute == "" {
		safeRoute = UnknownRoute
	}

	labels := []Label{
		L("service", m.service),
		L("method", safeMethod),
		L("route", safeRoute),
		L("status", strconv.Itoa(status)),
	}

	m.requestTotal.Inc(ctx, labels...)
	m.duration.Record(ctx, duration.Seconds(), labels...)
}

// GinHTTPMiddleware 返回一个可重用的 Gin 中间件，用于记录 HTTP RED 指标
func GinHTTPMiddleware(httpMetrics *HTTPServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if httpMetrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = UnknownRoute
		}

		httpMetrics.Observe(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
