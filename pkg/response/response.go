package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
	// DemoMode 远端存储不可用、仅在内存中运行时为 true，前端据此提示数据不会持久化
	DemoMode bool `json:"demo_mode,omitempty"`
}

// demoModeKey 由中间件写入的上下文键
const demoModeKey = "demo_mode"

// MarkDemoMode 标记本次请求处于演示（本地回退）模式
func MarkDemoMode(c *gin.Context, demo bool) {
	c.Set(demoModeKey, demo)
}

func isDemo(c *gin.Context) bool {
	return c.GetBool(demoModeKey)
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:     0,
		Message:  "success",
		Data:     data,
		DemoMode: isDemo(c),
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:     0,
		Message:  "success",
		Data:     data,
		DemoMode: isDemo(c),
	})
}

// List 200 列表响应（不分页，数据量以课程/人员为单位，规模很小）
func List(c *gin.Context, list interface{}, total int) {
	OK(c, gin.H{"list": list, "total": total})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:     code,
		Message:  message,
		DemoMode: isDemo(c),
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.JSON(httpStatus, Response{
		Code:     code,
		Message:  message,
		Details:  details,
		DemoMode: isDemo(c),
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409 并发修改冲突
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}
