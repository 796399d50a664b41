package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseID 解析路径中的正整数 id；非法输入返回 ok=false，由调用方回 400。
func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// requestID 读取 RequestID 中间件写入的请求标识，用于审计日志关联。
func requestID(c *gin.Context) string {
	if v, ok := c.Get("request_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
