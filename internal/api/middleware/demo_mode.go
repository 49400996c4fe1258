package middleware

import (
	"github.com/gin-gonic/gin"

	"swim-admin/pkg/response"
)

// ModeReporter 报告存储是否已回退到内存模式
type ModeReporter interface {
	IsDemoMode() bool
}

// DemoMode 在响应中标记演示模式。
// 在 Handler 之前读取一次；本次请求触发的降级从下一次请求起体现。
func DemoMode(st ModeReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.MarkDemoMode(c, st.IsDemoMode())
		c.Next()
	}
}
