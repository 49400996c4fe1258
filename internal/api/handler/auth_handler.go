package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"swim-admin/internal/dto"
	"swim-admin/internal/service"
	"swim-admin/pkg/jwt"
	"swim-admin/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11001, "邮箱或口令错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出，Token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenInfo(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenInvalid), errors.Is(err, service.ErrRefreshTokenType):
			response.Unauthorized(c, 11002, "Refresh Token 无效或已过期")
		case errors.Is(err, service.ErrUserNotFound):
			response.Unauthorized(c, 11003, "用户已不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// GetCurrentUser 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 12001, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}
