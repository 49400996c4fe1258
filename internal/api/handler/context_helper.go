package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"swim-admin/internal/model"
	"swim-admin/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetViewer 由 Token 中的身份信息构造当前用户，用于可见性与审批权限判断
func MustGetViewer(c *gin.Context) (*model.User, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return nil, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return nil, false
	}
	return &model.User{UserID: userID, Role: role, IsAdmin: c.GetBool("is_admin")}, true
}

// tokenInfo 当前 Access Token 的 jti 与过期时间
func tokenInfo(c *gin.Context) (string, time.Time) {
	return c.GetString("token_jti"), c.GetTime("token_exp")
}
