package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swim-admin/pkg/response"
)

// BodyLimit 请求体大小限制
// 声明了 Content-Length 的请求直接按长度拒绝；分块上传由 MaxBytesReader 在读取时截断，
// 超限的 JSON / multipart 解析失败后由各 Handler 按参数错误返回
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
