package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeffpollockjr/unique-number-api/clog"
	"github.com/jeffpollockjr/unique-number-api/number"
	"github.com/jeffpollockjr/unique-number-api/xerrors"
)

// generateRequest 分配请求体，tag 为可选的透传注记
type generateRequest struct {
	Tag string `json:"tag"`
}

// cleanupRequest 年龄清理请求体，days 缺省时使用五年阈值
type cleanupRequest struct {
	Days *int `json:"days"`
}

// deleteAllRequest 全量删除请求体
type deleteAllRequest struct {
	ConfirmationToken string `json:"confirmation_token"`
}

// handleGenerate 分配一个新的唯一数值
func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	// 空请求体是合法的，tag 纯属可选
	_ = c.ShouldBindJSON(&req)

	n, err := s.alloc.Allocate(c.Request.Context(), req.Tag)
	if err != nil {
		if xerrors.Is(err, number.ErrExhausted) {
			respondError(c, http.StatusInternalServerError, "failed to generate a unique number, keyspace may be saturated")
			return
		}
		s.logger.Error("generate failed", clog.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to generate number")
		return
	}

	c.JSON(http.StatusCreated, n)
}

// handleCheck 查询某个值是否已被认领
func (s *Server) handleCheck(c *gin.Context) {
	value, ok := parseValueParam(c)
	if !ok {
		return
	}

	n, exists, err := s.alloc.Exists(c.Request.Context(), value)
	if err != nil {
		s.logger.Error("check failed", clog.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to check number")
		return
	}

	if exists {
		c.JSON(http.StatusOK, gin.H{"exists": true, "data": n})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": false, "data": nil})
}

// handleStats 返回键空间占用统计
func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.alloc.Stats(c.Request.Context())
	if err != nil {
		s.logger.Error("stats failed", clog.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// handleDelete 删除精确匹配的一条记录
func (s *Server) handleDelete(c *gin.Context) {
	value, ok := parseValueParam(c)
	if !ok {
		return
	}

	n, err := s.alloc.Delete(c.Request.Context(), value)
	if err != nil {
		switch {
		case xerrors.Is(err, number.ErrOutOfRange):
			respondError(c, http.StatusBadRequest, "value is outside the allowed range")
		case xerrors.Is(err, number.ErrNotFound):
			respondError(c, http.StatusNotFound, "number not found")
		default:
			s.logger.Error("delete failed", clog.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to delete number")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "number deleted", "data": n})
}

// handleCleanup 按年龄批量删除
func (s *Server) handleCleanup(c *gin.Context) {
	var req cleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	days := number.DefaultRetentionDays
	if req.Days != nil {
		days = *req.Days
	}

	deleted, err := s.alloc.DeleteOlderThan(c.Request.Context(), days)
	if err != nil {
		if xerrors.Is(err, number.ErrOutOfRange) {
			respondError(c, http.StatusBadRequest, "days cannot be negative")
			return
		}
		s.logger.Error("cleanup failed", clog.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to clean up numbers")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "stale numbers deleted", "deleted_count": deleted})
}

// handleDeleteAll 清空整个集合，需要确认口令
func (s *Server) handleDeleteAll(c *gin.Context) {
	var req deleteAllRequest
	_ = c.ShouldBindJSON(&req)

	deleted, err := s.alloc.DeleteAll(c.Request.Context(), req.ConfirmationToken)
	if err != nil {
		if xerrors.Is(err, number.ErrForbidden) {
			respondError(c, http.StatusForbidden, "invalid confirmation token")
			return
		}
		s.logger.Error("delete all failed", clog.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to delete numbers")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all numbers deleted", "deleted_count": deleted})
}

// handleHealth 存活探针
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)})
}

// parseValueParam 解析路径参数中的数值，非整数直接返回 400
func parseValueParam(c *gin.Context) (int64, bool) {
	value, err := strconv.ParseInt(c.Param("value"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "value must be an integer")
		return 0, false
	}
	return value, true
}

// respondError 统一的错误响应形状
func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
